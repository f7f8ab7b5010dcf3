package downloader

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"regexp"

	"golang.org/x/net/html"

	"github.com/sppd-tools/sppdparquet/internal/feed"
	"github.com/sppd-tools/sppdparquet/internal/util"
)

// Period token embedded in the zip filename, e.g. licitaciones_2023.zip
// or contratosMenores_202403.zip.
var periodLinkRe = regexp.MustCompile(`_(\d+)\.zip$`)

// DiscoverPeriodZips fetches a feed's landing page and returns the
// published periods mapped to their absolute zip URLs.
func DiscoverPeriodZips(ctx context.Context, client *http.Client, logger *slog.Logger, t feed.ProcurementType) (map[string]string, error) {
	l := logger.With(slog.String("type", t.String()))
	return PeriodZipsFromPage(ctx, client, l, t.LandingURL())
}

// PeriodZipsFromPage collects the period zip links from one listing
// page. Links without a period token are ignored; when the page repeats
// a period the last link wins.
func PeriodZipsFromPage(ctx context.Context, client *http.Client, logger *slog.Logger, landing string) (map[string]string, error) {
	l := logger.With(slog.String("landing_url", landing))

	base, err := url.Parse(landing)
	if err != nil {
		return nil, fmt.Errorf("parse landing URL %s: %w", landing, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, landing, nil)
	if err != nil {
		return nil, fmt.Errorf("create request %s: %w", landing, err)
	}
	req.Header.Set("User-Agent", randomUserAgent())

	body, err := util.Fetch(client, req)
	if err != nil {
		return nil, fmt.Errorf("fetch landing page: %w", err)
	}
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse landing page %s: %w", landing, err)
	}

	links := util.ParseLinks(root, ".zip")
	periods := make(map[string]string)
	for _, link := range links {
		abs, err := base.Parse(link)
		if err != nil {
			l.Warn("failed to resolve zip link", slog.String("link", link), slog.Any("error", err))
			continue
		}
		m := periodLinkRe.FindStringSubmatch(path.Base(abs.Path))
		if m == nil {
			continue
		}
		periods[m[1]] = abs.String()
	}

	l.Debug("discovered period links", slog.Int("count", len(periods)))
	return periods, nil
}
