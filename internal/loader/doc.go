// Package loader imports weights written by other frameworks.
//
// Files are SafeTensors, as produced by safetensors.torch.save_file. The
// reader here is lenient: it accepts F16, BF16, F32 and F64 tensors and
// converts them to float32, and it does not require a checksum.
// A WeightMapper then renames foreign keys to the native state dict names
// ("stem.conv.weight", "blocks.1.layers.0.shortcut.weight", ...).
//
// Supported layouts:
//   - native: files written by resnet.Save or "resnet export"
//   - torch-sequential: a PyTorch nn.Sequential of
//     (stem, four residual blocks, AdaptiveAvgPool2d, Flatten, Linear)
//
// Example:
//
//	stateDict, arch, err := loader.Import("resnet.safetensors")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = net.LoadStateDict(stateDict)
package loader
