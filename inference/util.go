package inference

import "runtime"

// GetSharedLibPath returns the expected location of the ONNX Runtime shared
// library for the current platform.
func GetSharedLibPath() string {
	if runtime.GOOS == "windows" {
		if runtime.GOARCH == "amd64" {
			return "./third_party/onnxruntime.dll"
		}
	}
	if runtime.GOOS == "darwin" {
		if runtime.GOARCH == "arm64" {
			return "./third_party/libonnxruntime.dylib"
		}
		if runtime.GOARCH == "amd64" {
			return "./third_party/libonnxruntime.dylib"
		}
	}
	if runtime.GOOS == "linux" {
		if runtime.GOARCH == "arm64" {
			return "./third_party/onnxruntime_arm64.so"
		}
		if runtime.GOARCH == "amd64" {
			return "./third_party/onnxruntime.so"
		}
	}
	panic("Unable to find a version of the onnxruntime library supporting this system.")
}
