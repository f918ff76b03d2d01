package record

import "testing"

func TestSlugify(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Led Zeppelin IV", "led-zeppelin-iv"},
		{"Motörhead", "motorhead"},
		{"Nirvana (2)", "nirvana"},
		{"AC/DC - Back In Black!", "ac-dc-back-in-black"},
		{"  Spaced   Out  ", "spaced-out"},
	}
	for _, tc := range cases {
		if got := Slugify(tc.in); got != tc.want {
			t.Errorf("Slugify(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestReleaseSlug(t *testing.T) {
	if got := ReleaseSlug("Bruce Springsteen", "Born To Run"); got != "bruce-springsteen-born-to-run" {
		t.Fatalf("unexpected release slug: %q", got)
	}
}

func TestTidyTextConvertsBBCode(t *testing.T) {
	in := `[b]Loud[/b] band [i]from[/i] [a=Someone] London [url=x]site[/url]  (defunct)`
	got := TidyText(in)
	want := `**Loud** band *from* London site`
	if got != want {
		t.Fatalf("TidyText = %q, want %q", got, want)
	}
}

func TestEscapeQuotes(t *testing.T) {
	if got := EscapeQuotes(`The "Best" Band (3)`); got != `The \"Best\" Band` {
		t.Fatalf("EscapeQuotes = %q", got)
	}
}

func TestYouTubeID(t *testing.T) {
	cases := map[string]string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ":       "dQw4w9WgXcQ",
		"https://www.youtube.com/watch?v=abc123&list=PLxyz": "abc123",
		"https://youtu.be/xyz789":                           "xyz789",
		"https://example.com/video":                         "",
	}
	for url, want := range cases {
		if got := YouTubeID(url); got != want {
			t.Errorf("YouTubeID(%q) = %q, want %q", url, got, want)
		}
	}
}

func TestPrimaryAndAdditionalVideos(t *testing.T) {
	r := &Release{}
	if r.PrimaryVideo() != nil {
		t.Fatal("expected nil primary video on empty release")
	}
	r.Videos = []Video{{Title: "one"}, {Title: "two"}, {Title: "three"}}
	if r.PrimaryVideo().Title != "one" {
		t.Fatalf("unexpected primary video: %+v", r.PrimaryVideo())
	}
	rest := r.AdditionalVideos()
	if len(rest) != 2 || rest[0].Title != "two" {
		t.Fatalf("unexpected additional videos: %+v", rest)
	}
}
