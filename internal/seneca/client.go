package seneca

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// ErrInvalidAssignmentURL is returned when a pasted link does not point at a
// Seneca classroom section.
var ErrInvalidAssignmentURL = errors.New("not a valid Seneca assignment URL")

// SectionRef identifies one section of one course on the upstream platform.
type SectionRef struct {
	CourseID  string
	SectionID string
}

// ParseAssignmentURL extracts the course and section IDs from a pasted
// classroom link, e.g.
// https://app.senecalearning.com/classroom/course/<course>/section/<section>/session
func ParseAssignmentURL(raw string) (SectionRef, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return SectionRef{}, ErrInvalidAssignmentURL
	}
	if !strings.HasSuffix(u.Hostname(), "senecalearning.com") {
		return SectionRef{}, ErrInvalidAssignmentURL
	}

	var ref SectionRef
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+1 < len(segments); i++ {
		switch segments[i] {
		case "course":
			ref.CourseID = segments[i+1]
		case "section":
			ref.SectionID = segments[i+1]
		}
	}
	if ref.CourseID == "" || ref.SectionID == "" {
		return SectionRef{}, ErrInvalidAssignmentURL
	}
	return ref, nil
}

// Client fetches raw section payloads from the Seneca content CDN. The fetch
// is a single request/response with no retries; deterministic extraction
// failures should not be retried and transient network ones are surfaced to
// the caller.
type Client struct {
	base   string
	client *http.Client
	log    zerolog.Logger
}

// NewClient creates a content client against the given API base URL.
func NewClient(base string, timeout time.Duration, log zerolog.Logger) *Client {
	return &Client{
		base:   strings.TrimRight(base, "/"),
		client: &http.Client{Timeout: timeout},
		log:    log.With().Str("component", "seneca_client").Logger(),
	}
}

// FetchSection retrieves and decodes the signed JSON payload for a section.
// The decoded value is handed to the Extractor as-is; no shape is assumed
// here beyond being valid JSON.
func (c *Client) FetchSection(ctx context.Context, ref SectionRef) (any, error) {
	endpoint := fmt.Sprintf("%s/api/courses/%s/sections/%s/contents",
		c.base, url.PathEscape(ref.CourseID), url.PathEscape(ref.SectionID))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch section: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn().
			Int("status", resp.StatusCode).
			Str("course_id", ref.CourseID).
			Str("section_id", ref.SectionID).
			Msg("Upstream returned non-OK status")
		return nil, fmt.Errorf("fetch section: unexpected status %d", resp.StatusCode)
	}

	var payload any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode section payload: %w", err)
	}
	return payload, nil
}
