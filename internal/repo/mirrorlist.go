package repo

import (
	"bufio"
	"context"
	"net/http"
	"strings"

	"go.trai.ch/zerr"
)

// FetchMirrorlist downloads a mirrorlist and returns its base URLs in order.
func FetchMirrorlist(ctx context.Context, client *http.Client, mirrorlist string) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mirrorlist, nil)
	if err != nil {
		return nil, zerr.Wrap(err, "creating request")
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := client.Do(req)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "querying mirrorlist"), "url", mirrorlist)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, zerr.With(zerr.With(zerr.New("mirrorlist error"), "url", mirrorlist), "status", resp.StatusCode)
	}

	var mirrors []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		mirrors = append(mirrors, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, zerr.Wrap(err, "reading mirrorlist")
	}
	if len(mirrors) == 0 {
		return nil, zerr.With(zerr.New("mirrorlist is empty"), "url", mirrorlist)
	}
	return mirrors, nil
}
