package compute

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DetectBinaryPath detects the path to the running sweep binary, which
// submitted jobs re-invoke in worker mode.
func DetectBinaryPath() (string, error) {
	path, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to detect path of sweep binary: %w", err)
	}
	return path, nil
}

// LastTokenID parses the last whitespace-delimited token of a submit
// command's output as the job id, e.g. "Submitted batch job 2".
func LastTokenID(out string) (int, error) {
	fields := strings.Fields(out)
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty submit output")
	}
	id, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return 0, fmt.Errorf("no job id in submit output %q", out)
	}
	return id, nil
}
