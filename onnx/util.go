package onnx

import "runtime"

// GetSharedLibPath returns the default path of the onnxruntime shared library
// for the current platform.
//
// Returns:
//   - string: The path to the shared library, or "" when the platform has no default.
func GetSharedLibPath() string {
	return sharedLibPath(runtime.GOOS, runtime.GOARCH)
}

func sharedLibPath(goos, goarch string) string {
	switch goos {
	case "windows":
		if goarch == "amd64" {
			return "./third_party/onnxruntime.dll"
		}
	case "darwin":
		if goarch == "arm64" {
			return "./third_party/onnxruntime_arm64.dylib"
		}
		if goarch == "amd64" {
			return "./third_party/onnxruntime_amd64.dylib"
		}
	case "linux":
		if goarch == "arm64" {
			return "./third_party/onnxruntime_arm64.so"
		}
		return "./third_party/onnxruntime.so"
	}
	return ""
}
