package objects

import (
	"errors"
	"testing"
)

func TestParsePath(t *testing.T) {
	tests := []struct {
		in, bucket, key string
		wantErr         bool
	}{
		{in: "/bucket/public/abc.jpg", bucket: "bucket", key: "public/abc.jpg"},
		{in: "bucket/key", bucket: "bucket", key: "key"},
		{in: "/bucket/", wantErr: true},
		{in: "/bucket", wantErr: true},
		{in: "", wantErr: true},
		{in: "//key", wantErr: true},
	}
	for _, tt := range tests {
		bucket, key, err := ParsePath(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidPath) {
				t.Fatalf("ParsePath(%q): expected ErrInvalidPath, got %v", tt.in, err)
			}
			continue
		}
		if err != nil || bucket != tt.bucket || key != tt.key {
			t.Fatalf("ParsePath(%q) = %q, %q, %v", tt.in, bucket, key, err)
		}
		if JoinPath(bucket, key) != "/"+tt.bucket+"/"+tt.key {
			t.Fatalf("JoinPath mismatch for %q", tt.in)
		}
	}
}

func TestParseDir(t *testing.T) {
	tests := []struct {
		in   string
		want Dir
		ok   bool
	}{
		{in: "/bucket/public", want: Dir{Bucket: "bucket", Prefix: "public"}, ok: true},
		{in: "/bucket/a/b/", want: Dir{Bucket: "bucket", Prefix: "a/b"}, ok: true},
		{in: "public", want: Dir{Prefix: "public"}, ok: true},
		{in: "/public", want: Dir{Prefix: "public"}, ok: true},
		{in: "  ", ok: false},
	}
	for _, tt := range tests {
		got, ok := parseDir(tt.in)
		if ok != tt.ok || got != tt.want {
			t.Fatalf("parseDir(%q) = %+v, %v; want %+v, %v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}

func TestDirContainsWholeSegments(t *testing.T) {
	d := Dir{Bucket: "b", Prefix: "public"}
	if !d.contains("b", "public/x.jpg") {
		t.Fatalf("expected public/x.jpg under public")
	}
	if d.contains("b", "public-old/x.jpg") {
		t.Fatalf("public-old must not match public")
	}
	if d.contains("other", "public/x.jpg") {
		t.Fatalf("bucket must match")
	}
}
