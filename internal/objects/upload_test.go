package objects

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"
)

var canonicalRE = regexp.MustCompile(`^/objects/[0-9a-f-]{36}\.[a-z0-9]+$`)

func TestUploadTargetsDirectoryByVisibility(t *testing.T) {
	mem := newMemStore()
	svc := NewService(&statStore{memStore: mem}, testConfig())

	tests := []struct {
		vis    Visibility
		prefix string
	}{
		{vis: VisibilityPublic, prefix: "/bucket-1/public/"},
		{vis: VisibilityPrivate, prefix: "/bucket-1/.private/"},
		{vis: "", prefix: "/bucket-1/public/"},
	}
	for _, tt := range tests {
		res, err := svc.Upload(context.Background(), UploadInput{
			Data: []byte("frame"), FileName: "clip.MP4", OwnerID: "u1", ContentType: "video/mp4", Visibility: tt.vis,
		})
		if err != nil {
			t.Fatalf("Upload(%q): %v", tt.vis, err)
		}
		if !strings.HasPrefix(res.StoragePath, tt.prefix) {
			t.Fatalf("Upload(%q) stored at %s, want prefix %s", tt.vis, res.StoragePath, tt.prefix)
		}
		if !canonicalRE.MatchString(res.CanonicalPath) || !strings.HasSuffix(res.CanonicalPath, ".mp4") {
			t.Fatalf("unexpected canonical path %q", res.CanonicalPath)
		}
		if !strings.HasSuffix(res.StoragePath, strings.TrimPrefix(res.CanonicalPath, "/objects")) {
			t.Fatalf("canonical %s and storage %s disagree", res.CanonicalPath, res.StoragePath)
		}
		if res.ACLWarning != "" || res.Size != 5 || res.ContentType != "video/mp4" {
			t.Fatalf("unexpected result %+v", res)
		}
	}
}

func TestUploadGeneratesUniqueIdentifiers(t *testing.T) {
	svc := NewService(newMemStore(), testConfig())
	seen := make(map[string]struct{})
	for i := 0; i < 50; i++ {
		res, err := svc.Upload(context.Background(), UploadInput{Data: []byte("x"), FileName: "a.png", ContentType: "image/png"})
		if err != nil {
			t.Fatalf("Upload: %v", err)
		}
		if _, dup := seen[res.CanonicalPath]; dup {
			t.Fatalf("duplicate identifier %s", res.CanonicalPath)
		}
		seen[res.CanonicalPath] = struct{}{}
	}
}

func TestUploadToleratesACLFailure(t *testing.T) {
	mem := newMemStore()
	mem.setMetaErr = errors.New("metadata write refused")
	svc := NewService(&statStore{memStore: mem}, testConfig())

	res, err := svc.Upload(context.Background(), UploadInput{
		Data: []byte("GIF89a..."), FileName: "a.gif", OwnerID: "u1", Visibility: VisibilityPrivate,
	})
	if err != nil {
		t.Fatalf("Upload must not fail on ACL error: %v", err)
	}
	if res.CanonicalPath == "" || res.StoragePath == "" {
		t.Fatalf("missing paths in %+v", res)
	}
	if !strings.Contains(res.ACLWarning, "metadata write refused") {
		t.Fatalf("expected ACL warning, got %q", res.ACLWarning)
	}

	h, err := svc.Locate(context.Background(), res.CanonicalPath)
	if err != nil || h.StoragePath() != res.StoragePath {
		t.Fatalf("Locate after ACL failure = %+v, %v", h, err)
	}
}

func TestUploadAttachesPolicy(t *testing.T) {
	st := &statStore{memStore: newMemStore()}
	svc := NewService(st, testConfig())

	res, err := svc.Upload(context.Background(), UploadInput{Data: []byte("x"), FileName: "a.png", OwnerID: "owner-9", ContentType: "image/png", Visibility: VisibilityPrivate})
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	h, err := svc.Locate(context.Background(), res.CanonicalPath)
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	p, ok, err := svc.Policy(context.Background(), h)
	if err != nil || !ok {
		t.Fatalf("Policy = %+v, %v, %v", p, ok, err)
	}
	if p.Owner != "owner-9" || p.Visibility != VisibilityPrivate {
		t.Fatalf("unexpected policy %+v", p)
	}
}

func TestUploadRejections(t *testing.T) {
	tests := []struct {
		name string
		cfg  func(*Config)
		in   UploadInput
		want error
	}{
		{name: "empty", in: UploadInput{FileName: "a.png"}, want: ErrInvalidInput},
		{name: "text sniffed", in: UploadInput{Data: []byte("just some text"), FileName: "a.txt"}, want: ErrInvalidInput},
		{name: "declared pdf", in: UploadInput{Data: []byte("x"), ContentType: "application/pdf"}, want: ErrInvalidInput},
		{name: "bad visibility", in: UploadInput{Data: []byte("x"), ContentType: "image/png", Visibility: "friends"}, want: ErrInvalidInput},
		{
			name: "no private dir",
			cfg:  func(c *Config) { c.PrivateObjectDir = "" },
			in:   UploadInput{Data: []byte("x"), ContentType: "image/png", Visibility: VisibilityPrivate},
			want: ErrConfiguration,
		},
		{
			name: "no public dir",
			cfg:  func(c *Config) { c.PublicSearchPaths = nil },
			in:   UploadInput{Data: []byte("x"), ContentType: "image/png"},
			want: ErrConfiguration,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig()
			if tt.cfg != nil {
				tt.cfg(&cfg)
			}
			mem := newMemStore()
			svc := NewService(mem, cfg)
			if _, err := svc.Upload(context.Background(), tt.in); !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
			if len(mem.objects) != 0 {
				t.Fatalf("rejected upload wrote %d objects", len(mem.objects))
			}
		})
	}
}

func TestExtension(t *testing.T) {
	tests := map[string]string{
		"photo.JPG":      "jpg",
		"archive.tar.gz": "gz",
		"noext":          "bin",
		"":               "bin",
		"weird.p$g":      "bin",
		"trailingdot.":   "bin",
	}
	for in, want := range tests {
		if got := extension(in); got != want {
			t.Fatalf("extension(%q) = %q, want %q", in, got, want)
		}
	}
}
