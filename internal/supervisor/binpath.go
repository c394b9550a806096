package supervisor

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/streamgate/corebridge/internal/sgerrors"
)

// binaryNames returns (preferred, fallback) client binary names for the
// current OS/arch, matching process_manager.rs's candidate selection.
func binaryNames() (preferred, fallback string) {
	switch runtime.GOOS {
	case "darwin":
		if runtime.GOARCH == "arm64" {
			return "stream-client-mac-arm64", "stream-client-mac-intel"
		}
		return "stream-client-mac-intel", "stream-client-mac-arm64"
	case "windows":
		return "stream-client-win.exe", "stream-client-win.exe"
	default:
		return "stream-client-linux", "stream-client-linux"
	}
}

// ResolveBinaryPath locates the tunnel client binary. If override is
// non-empty it's tried first (the bundled-resource-dir equivalent isn't
// applicable to a standalone Go binary, so the caller supplies its own
// resource directory via override or one of the env-relative candidates
// below are used). Candidates are checked in the same production-before-
// development order as process_manager.rs's get_client_path.
func ResolveBinaryPath(override string) (string, error) {
	preferred, fallback := binaryNames()

	var candidates []string
	if override != "" {
		candidates = append(candidates,
			filepath.Join(override, "binaries", preferred),
			filepath.Join(override, "binaries", fallback),
			filepath.Join(override, preferred),
			filepath.Join(override, fallback),
		)
	}

	cwd, err := os.Getwd()
	if err == nil {
		candidates = append(candidates,
			filepath.Join(cwd, "binaries", preferred),
			filepath.Join(cwd, "..", "binaries", preferred),
			filepath.Join(cwd, preferred),
		)
	}

	for _, path := range candidates {
		if info, statErr := os.Stat(path); statErr == nil && !info.IsDir() {
			return path, nil
		}
	}

	return "", sgerrors.New(sgerrors.KindEnvironment, "tunnel client binary not found").WithCode(preferred)
}
