package fetch

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang.org/x/text/encoding/charmap"
)

func TestCandidateURLs_sharePoint(t *testing.T) {
	raw := "https://contoso.sharepoint.com/:x:/p/officer/EaBcD?e=xyz"
	got := CandidateURLs(raw)
	if len(got) != 4 {
		t.Fatalf("got %d candidates: %v", len(got), got)
	}
	if !strings.HasPrefix(got[0], "https://api.onedrive.com/v1.0/shares/u!") || !strings.HasSuffix(got[0], "/root/content") {
		t.Errorf("shares candidate = %q", got[0])
	}
	if strings.Contains(got[0], "=") {
		t.Errorf("shares token must be unpadded: %q", got[0])
	}
	if !strings.Contains(got[1], "download=1") || !strings.Contains(got[1], "e=xyz") || !strings.Contains(got[1], "/:x:/p/") {
		t.Errorf("download candidate = %q", got[1])
	}
	if !strings.Contains(got[2], "/:x:/s/") || !strings.Contains(got[2], "download=1") {
		t.Errorf("shared-path candidate = %q", got[2])
	}
	if got[3] != raw {
		t.Errorf("last candidate = %q, want original", got[3])
	}
}

func TestCandidateURLs_oneDriveWithoutPersonalPath(t *testing.T) {
	got := CandidateURLs("https://1drv.ms/x/s!AbCdEf")
	if len(got) != 3 {
		t.Errorf("got %d candidates: %v", len(got), got)
	}
}

func TestCandidateURLs_plainLink(t *testing.T) {
	raw := "https://files.example.com/roster.xlsx"
	got := CandidateURLs(raw)
	if len(got) != 1 || got[0] != raw {
		t.Errorf("CandidateURLs = %v", got)
	}
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/roster.xlsx", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			http.Error(w, "no agent", http.StatusForbidden)
			return
		}
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write([]byte("PK\x03\x04workbook"))
	})
	mux.HandleFunc("/login", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte("<!DOCTYPE html><html><head><title>Sign in to your account</title></head><body></body></html>"))
	})
	mux.HandleFunc("/broken", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	mux.HandleFunc("/name.txt", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("\xef\xbb\xbfIMP_FEB_2026.xlsx\n"))
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestFetch_workbook(t *testing.T) {
	srv := newServer(t)
	f := NewFetcher(WithTimeout(5 * time.Second))
	body, err := f.Fetch(context.Background(), srv.URL+"/roster.xlsx")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if !strings.HasPrefix(string(body), "PK") {
		t.Errorf("body = %q", body)
	}
}

func TestFetch_htmlIsNotSpreadsheet(t *testing.T) {
	srv := newServer(t)
	_, err := NewFetcher().Fetch(context.Background(), srv.URL+"/login")
	if !errors.Is(err, ErrNotSpreadsheet) {
		t.Fatalf("expected ErrNotSpreadsheet, got %v", err)
	}
	if errors.Is(err, ErrFetchFailed) {
		t.Error("malformed download must be distinct from a failed download")
	}
	if !strings.Contains(err.Error(), "Sign in to your account") {
		t.Errorf("error should carry the page title: %v", err)
	}
}

func TestFetch_failed(t *testing.T) {
	srv := newServer(t)
	_, err := NewFetcher().Fetch(context.Background(), srv.URL+"/broken")
	if !errors.Is(err, ErrFetchFailed) {
		t.Errorf("expected ErrFetchFailed, got %v", err)
	}
	if _, err := NewFetcher().Fetch(context.Background(), " "); !errors.Is(err, ErrFetchFailed) {
		t.Errorf("empty url: expected ErrFetchFailed, got %v", err)
	}
}

func TestFetch_cancelled(t *testing.T) {
	srv := newServer(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewFetcher().Fetch(ctx, srv.URL+"/roster.xlsx"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestFetchText(t *testing.T) {
	srv := newServer(t)
	f := NewFetcher()
	if got := f.FetchText(context.Background(), srv.URL+"/name.txt"); got != "IMP_FEB_2026.xlsx" {
		t.Errorf("FetchText = %q", got)
	}
	if got := f.FetchText(context.Background(), srv.URL+"/login"); got != "" {
		t.Errorf("FetchText(html) = %q, want empty", got)
	}
	if got := f.FetchText(context.Background(), ""); got != "" {
		t.Errorf("FetchText(empty) = %q", got)
	}
}

func TestDecodeText(t *testing.T) {
	arabic, err := charmap.Windows1256.NewEncoder().String("قسم الضباط")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	tests := []struct {
		name string
		in   []byte
		want string
	}{
		{"utf8", []byte("Officers"), "Officers"},
		{"bom", []byte("\xef\xbb\xbf  Officers \n"), "Officers"},
		{"utf8 arabic", []byte("قسم الضباط"), "قسم الضباط"},
		{"windows-1256", []byte(arabic), "قسم الضباط"},
		{"html", []byte("<!DOCTYPE html><html></html>"), ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeText(tt.in); got != tt.want {
				t.Errorf("DecodeText = %q, want %q", got, tt.want)
			}
		})
	}
}
