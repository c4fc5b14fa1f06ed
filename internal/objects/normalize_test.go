package objects

import "testing"

func TestNormalize(t *testing.T) {
	n := NewNormalizer(parseDirs([]string{"/bucket-1/public", "/bucket-1/public/videos", "/bucket-1/.private"}))

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "canonical", in: "/objects/abc.jpg", want: "/objects/abc.jpg"},
		{name: "gcs url public", in: "https://storage.googleapis.com/bucket-1/public/abc.jpg?X-Goog-Signature=1", want: "/objects/abc.jpg"},
		{name: "longest prefix wins", in: "https://storage.googleapis.com/bucket-1/public/videos/clip.mp4", want: "/objects/clip.mp4"},
		{name: "private dir", in: "http://host/bucket-1/.private/p.png", want: "/objects/p.png"},
		{name: "firebase url", in: "https://firebasestorage.googleapis.com/v0/b/bucket-1/o/public%2Fabc.jpg?alt=media", want: "/objects/abc.jpg"},
		{name: "segment boundary", in: "https://host/bucket-1/publicity/abc.jpg", want: "https://host/bucket-1/publicity/abc.jpg"},
		{name: "unknown url", in: "https://cdn.example.com/x/y/z.jpg", want: "https://cdn.example.com/x/y/z.jpg"},
		{name: "dir itself", in: "https://host/bucket-1/public", want: "https://host/bucket-1/public"},
		{name: "legacy bare", in: "abc.jpg", want: "/objects/abc.jpg"},
		{name: "legacy slash", in: "/abc.jpg", want: "/objects/abc.jpg"},
		{name: "multi segment", in: "some/dir/abc.jpg", want: "some/dir/abc.jpg"},
		{name: "empty", in: "", want: ""},
		{name: "dotdot", in: "..", want: ".."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := n.Normalize(tt.in)
			if got != tt.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
			}
			if again := n.Normalize(got); again != got {
				t.Fatalf("not idempotent: Normalize(%q) = %q", got, again)
			}
		})
	}
}
