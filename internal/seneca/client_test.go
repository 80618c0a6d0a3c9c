package seneca

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestParseAssignmentURL(t *testing.T) {
	cases := []struct {
		name    string
		url     string
		want    SectionRef
		wantErr bool
	}{
		{
			name: "classroom session url",
			url:  "https://app.senecalearning.com/classroom/course/c-123/section/s-456/session",
			want: SectionRef{CourseID: "c-123", SectionID: "s-456"},
		},
		{
			name: "trailing slash and query",
			url:  "https://app.senecalearning.com/classroom/course/c-1/section/s-2/?utm=x",
			want: SectionRef{CourseID: "c-1", SectionID: "s-2"},
		},
		{
			name: "surrounding whitespace",
			url:  "  https://app.senecalearning.com/classroom/course/c/section/s  ",
			want: SectionRef{CourseID: "c", SectionID: "s"},
		},
		{name: "wrong host", url: "https://example.com/course/c/section/s", wantErr: true},
		{name: "no section segment", url: "https://app.senecalearning.com/classroom/course/c-123", wantErr: true},
		{name: "empty", url: "", wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			ref, err := ParseAssignmentURL(tc.url)
			if tc.wantErr {
				if err == nil {
					t.Fatalf("expected error, got %+v", ref)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ref != tc.want {
				t.Errorf("got %+v, want %+v", ref, tc.want)
			}
		})
	}
}

func TestClient_FetchSection(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"title":"T","contents":[]}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, zerolog.Nop())

	payload, err := client.FetchSection(context.Background(), SectionRef{CourseID: "c-1", SectionID: "s-2"})
	if err != nil {
		t.Fatalf("FetchSection failed: %v", err)
	}
	if gotPath != "/api/courses/c-1/sections/s-2/contents" {
		t.Errorf("wrong path %q", gotPath)
	}
	root, ok := payload.(map[string]any)
	if !ok {
		t.Fatalf("expected decoded object, got %T", payload)
	}
	if root["title"] != "T" {
		t.Errorf("payload not decoded: %+v", root)
	}
}

func TestClient_FetchSection_NonOKStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, zerolog.Nop())

	if _, err := client.FetchSection(context.Background(), SectionRef{CourseID: "c", SectionID: "s"}); err == nil {
		t.Fatal("expected error for non-OK status")
	}
}

func TestClient_FetchSection_BadBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"title": truncated`))
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, zerolog.Nop())

	if _, err := client.FetchSection(context.Background(), SectionRef{CourseID: "c", SectionID: "s"}); err == nil {
		t.Fatal("expected decode error for invalid JSON body")
	}
}
