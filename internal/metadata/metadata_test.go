package metadata_test

import (
	"context"
	"errors"
	"testing"

	"pcsteps/internal/assembly"
	"pcsteps/internal/metadata"
	"pcsteps/internal/services"
	"pcsteps/internal/services/ytdlp"
)

type stubFetcher struct {
	info  ytdlp.Info
	err   error
	calls int
}

func (s *stubFetcher) Info(ctx context.Context, url string) (ytdlp.Info, error) {
	s.calls++
	return s.info, s.err
}

func TestExtractVideoID(t *testing.T) {
	cases := map[string]string{
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ":                "dQw4w9WgXcQ",
		"https://youtu.be/dQw4w9WgXcQ?t=42":                          "dQw4w9WgXcQ",
		"https://www.youtube.com/embed/dQw4w9WgXcQ":                  "dQw4w9WgXcQ",
		"https://www.youtube.com/shorts/abc_DEF-12":                  "abc_DEF-12",
		"https://www.youtube.com/watch?feature=share&v=dQw4w9WgXcQ":  "dQw4w9WgXcQ",
		"https://www.youtube.com/watch?v=dQw4w9WgXcQ&list=PL123#top": "dQw4w9WgXcQ",
	}
	for url, want := range cases {
		got, err := metadata.ExtractVideoID(url)
		if err != nil {
			t.Fatalf("ExtractVideoID(%q) error: %v", url, err)
		}
		if got != want {
			t.Fatalf("ExtractVideoID(%q) = %q, want %q", url, got, want)
		}
	}
	if _, err := metadata.ExtractVideoID("https://vimeo.com/123"); !errors.Is(err, metadata.ErrNoVideoID) {
		t.Fatalf("expected ErrNoVideoID, got %v", err)
	}
}

func TestInferVideoTypeOrder(t *testing.T) {
	cases := []struct {
		title string
		want  assembly.VideoType
	}{
		{"Complete Build: CPU install and cable management", assembly.VideoTypeFullBuild},
		{"Easy CPU install on AM5", assembly.VideoTypeCPUInstall},
		{"Noctua CPU cooler walkthrough", assembly.VideoTypeCoolerInstall},
		{"Memory install in 60 seconds", assembly.VideoTypeRAMInstall},
		{"Swapping my graphics card", assembly.VideoTypeGPUInstall},
		{"Tidy cables behind the tray", assembly.VideoTypeCableManagement},
		{"My new desk setup", assembly.VideoTypeFullBuild},
	}
	for _, tc := range cases {
		if got := metadata.InferVideoType(tc.title, ""); got != tc.want {
			t.Fatalf("InferVideoType(%q) = %s, want %s", tc.title, got, tc.want)
		}
	}
}

func TestInferSkillLevel(t *testing.T) {
	if got := metadata.InferSkillLevel("First time builder", ""); got != assembly.SkillBeginner {
		t.Fatalf("got %s", got)
	}
	if got := metadata.InferSkillLevel("Custom loop deep dive", ""); got != assembly.SkillAdvanced {
		t.Fatalf("got %s", got)
	}
	if got := metadata.InferSkillLevel("Beginner friendly expert tips", ""); got != assembly.SkillBeginner {
		t.Fatalf("beginner keywords should win, got %s", got)
	}
	if got := metadata.InferSkillLevel("Building a PC", ""); got != assembly.SkillIntermediate {
		t.Fatalf("got %s", got)
	}
}

func TestInferPlatform(t *testing.T) {
	cases := map[string]assembly.Platform{
		"Ryzen 7000 AM5 build":        assembly.PlatformAM5,
		"budget ryzen 5000 rig":       assembly.PlatformAM4,
		"Intel 13th Gen gaming build": assembly.PlatformLGA1700,
		"lga1200 refresh":             assembly.PlatformLGA1200,
		"generic build":               assembly.PlatformUndetermined,
	}
	for title, want := range cases {
		if got := metadata.InferPlatform(title, ""); got != want {
			t.Fatalf("InferPlatform(%q) = %q, want %q", title, got, want)
		}
	}
}

func TestInferFormFactorPrefersSpecificNames(t *testing.T) {
	cases := map[string]assembly.FormFactor{
		"Mini-ITX SFF build":   assembly.FormFactorITX,
		"micro-ATX budget rig": assembly.FormFactorMATX,
		"E-ATX workstation":    assembly.FormFactorEATX,
		"ATX mid tower":        assembly.FormFactorATX,
		"no size mentioned":    assembly.FormFactorUndetermined,
	}
	for title, want := range cases {
		if got := metadata.InferFormFactor(title, ""); got != want {
			t.Fatalf("InferFormFactor(%q) = %q, want %q", title, got, want)
		}
	}
}

func TestValidateContent(t *testing.T) {
	cases := []struct {
		title, description string
		want               bool
	}{
		{"How to build a gaming PC", "", true},
		{"Worst builds ever PC roast", "", false},
		{"Reaction video: my friend's build", "", false},
		{"Morning vlog", "cooking pasta", false},
		{"Vlog", "today we install a motherboard", true},
	}
	for _, tc := range cases {
		meta := assembly.VideoMetadata{Title: tc.title, Description: tc.description}
		if got := metadata.ValidateContent(meta); got != tc.want {
			t.Fatalf("ValidateContent(%q, %q) = %v, want %v", tc.title, tc.description, got, tc.want)
		}
	}
}

func TestExtractorBuildsMetadata(t *testing.T) {
	fetcher := &stubFetcher{info: ytdlp.Info{
		ID:          "abc123",
		Title:       "AM5 build guide for beginners",
		Channel:     "Builds Weekly",
		Duration:    1799.6,
		UploadDate:  "20240301",
		Description: "Ryzen 7000 in a mini-itx case",
	}}
	extractor := metadata.NewExtractor(fetcher, nil)

	meta, err := extractor.Extract(context.Background(), "https://www.youtube.com/watch?v=abc123")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if fetcher.calls != 1 {
		t.Fatalf("expected one metadata fetch, got %d", fetcher.calls)
	}
	want := assembly.VideoMetadata{
		VideoID:         "abc123",
		Title:           "AM5 build guide for beginners",
		ChannelName:     "Builds Weekly",
		URL:             "https://www.youtube.com/watch?v=abc123",
		VideoType:       assembly.VideoTypeFullBuild,
		SkillLevel:      assembly.SkillBeginner,
		Platform:        assembly.PlatformAM5,
		FormFactor:      assembly.FormFactorITX,
		DurationSeconds: 1799.6,
		UploadDate:      "20240301",
		Description:     "Ryzen 7000 in a mini-itx case",
	}
	if meta != want {
		t.Fatalf("unexpected metadata:\n got %+v\nwant %+v", meta, want)
	}
	if err := meta.Validate(); err != nil {
		t.Fatalf("metadata should validate: %v", err)
	}
}

func TestExtractorFallsBackToSourceID(t *testing.T) {
	fetcher := &stubFetcher{info: ytdlp.Info{ID: "remote-id", Title: "PC build"}}
	meta, err := metadata.NewExtractor(fetcher, nil).Extract(context.Background(), "https://example.com/v/remote-id")
	if err != nil {
		t.Fatalf("Extract returned error: %v", err)
	}
	if meta.VideoID != "remote-id" {
		t.Fatalf("expected source id fallback, got %q", meta.VideoID)
	}
}

func TestExtractorWrapsFetchFailure(t *testing.T) {
	fetcher := &stubFetcher{err: errors.New("http 404")}
	_, err := metadata.NewExtractor(fetcher, nil).Extract(context.Background(), "https://youtu.be/x")
	if !errors.Is(err, services.ErrExternalService) {
		t.Fatalf("expected external service error, got %v", err)
	}
}
