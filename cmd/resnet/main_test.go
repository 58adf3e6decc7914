package main

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_Version(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run([]string{"version"}, &out))
	assert.Equal(t, "resnet "+version+"\n", out.String())

	out.Reset()
	require.NoError(t, run(nil, &out))
	assert.Contains(t, out.String(), "Commands:")

	assert.EqualError(t, run([]string{"train"}, &out), `unknown command "train"`)
}

func TestParseLayers(t *testing.T) {
	layers, err := parseLayers("3, 4,6,3")
	require.NoError(t, err)
	assert.Equal(t, [4]int{3, 4, 6, 3}, layers)

	_, err = parseLayers("2,2,2")
	assert.Error(t, err)
	_, err = parseLayers("2,2,x,2")
	assert.Error(t, err)
}

func TestTopIndices(t *testing.T) {
	scores := []float32{0.1, 0.9, -1, 0.5, 0.9}
	assert.Equal(t, []int{1, 4, 3}, topIndices(scores, 3))
	assert.Equal(t, []int{1, 4, 3, 0, 2}, topIndices(scores, 10))
}

func TestRun_Summary(t *testing.T) {
	var out bytes.Buffer
	err := run([]string{"summary", "-in", "1", "-classes", "10", "-layers", "1,1,1,1", "-size", "32"}, &out)
	require.NoError(t, err)

	assert.Contains(t, out.String(), "ResNet(in_channels=1, num_classes=10)")
	assert.Contains(t, out.String(), "[1 512 1 1]")

	err = run([]string{"summary", "-layers", "0,1,1,1"}, &out)
	assert.Error(t, err)
}

func TestRun_ExportVerifyInfer(t *testing.T) {
	path := filepath.Join(t.TempDir(), "w.safetensors")
	model := []string{"-in", "1", "-classes", "10", "-layers", "1,1,1,1"}

	var out bytes.Buffer
	require.NoError(t, run(append([]string{"export", "-out", path}, model...), &out))
	assert.Contains(t, out.String(), "wrote "+path)

	out.Reset()
	require.NoError(t, run([]string{"verify", "-weights", path}, &out))
	assert.Contains(t, out.String(), "ok")
	assert.Contains(t, out.String(), "checksum true")

	out.Reset()
	require.NoError(t, run([]string{"infer", "-weights", path, "-size", "16", "-batch", "2", "-top", "3", "-workers", "2"}, &out))
	assert.Contains(t, out.String(), "output: [2 10]")
	assert.Contains(t, out.String(), "sample 1 top-3:")

	assert.Error(t, run([]string{"verify"}, &out))
}

func TestRun_ConvertNative(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.safetensors")
	dst := filepath.Join(dir, "dst.safetensors")
	model := []string{"-in", "1", "-classes", "10", "-layers", "1,1,1,1"}

	var out bytes.Buffer
	require.NoError(t, run(append([]string{"export", "-out", src}, model...), &out))

	out.Reset()
	require.NoError(t, run(append([]string{"convert", "-weights", src, "-out", dst}, model...), &out))
	assert.Contains(t, out.String(), "(native)")

	out.Reset()
	require.NoError(t, run([]string{"verify", "-weights", dst}, &out))

	err := run(append([]string{"convert", "-weights", src, "-out", dst, "-classes", "11"}, model[:2]...), &out)
	assert.ErrorContains(t, err, "state dict mismatch")

	assert.Error(t, run([]string{"convert", "-weights", src, "-arch", "llama"}, &out))
}
