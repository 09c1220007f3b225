package ota

import (
	"bytes"
	"io"
	"strings"
	"testing"
)

func TestCleanRepoName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"gowvp/vtime", "gowvp/vtime"},
		{"github.com/gowvp/vtime", "gowvp/vtime"},
		{"https://github.com/gowvp/vtime", "gowvp/vtime"},
		{"api.github.com/repos/gowvp/vtime", "gowvp/vtime"},
	}
	for _, tt := range tests {
		if got := cleanRepoName(tt.in); got != tt.want {
			t.Errorf("cleanRepoName(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGetDownloadLink(t *testing.T) {
	o := NewOTA("github.com/gowvp/vtime", "linux_amd64")
	link := o.getDownloadLink()
	if !strings.HasPrefix(link, "https://github.com/gowvp/vtime/") {
		t.Errorf("unexpected link prefix: %s", link)
	}
	if !strings.HasSuffix(link, "/linux_amd64") {
		t.Errorf("unexpected link suffix: %s", link)
	}
	if !strings.Contains(link, "releases/latest/download") {
		t.Errorf("link missing release path: %s", link)
	}
}

func TestProgressReader(t *testing.T) {
	payload := bytes.Repeat([]byte("a"), 4096)
	p := NewProgressReader(int64(len(payload)), bytes.NewReader(payload), nil)
	defer p.Close()

	data, err := io.ReadAll(p)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(data) != len(payload) {
		t.Fatalf("read %d bytes, want %d", len(data), len(payload))
	}
	if got := p.Current.Load(); got != int64(len(payload)) {
		t.Errorf("current = %d, want %d", got, len(payload))
	}
}
