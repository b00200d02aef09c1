package fs

import (
	"context"
	"fmt"
	"os"
	"time"
)

// WaitForFile polls until path exists and is non-empty, backing off from
// 50ms up to 500ms between checks. It gives up after maxWait or when ctx is done.
func WaitForFile(ctx context.Context, path string, maxWait time.Duration) (os.FileInfo, error) {
	deadline := time.Now().Add(maxWait)
	delay := 50 * time.Millisecond

	for {
		info, err := os.Stat(path)
		if err == nil && info.Size() > 0 {
			return info, nil
		}
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat %s: %w", path, err)
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, fmt.Errorf("timeout waiting for file %s after %v", path, maxWait)
		}

		t := time.NewTimer(min(delay, remaining))
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
		delay = min(delay*2, 500*time.Millisecond)
	}
}
