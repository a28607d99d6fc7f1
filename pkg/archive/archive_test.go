package archive

import (
	"archive/zip"
	"bytes"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/panelforge/panelforge/pkg/assetstore"
	"github.com/panelforge/panelforge/pkg/errors"
	"github.com/panelforge/panelforge/pkg/project"
)

// testPNG returns a decodable image for preview generation.
func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 8, 6))
	for y := 0; y < 6; y++ {
		for x := 0; x < 8; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: uint8(x * 30), G: uint8(y * 40), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode test png: %v", err)
	}
	return buf.Bytes()
}

func entryNames(t *testing.T, container []byte) map[string]bool {
	t.Helper()
	zr, err := zip.NewReader(bytes.NewReader(container), int64(len(container)))
	if err != nil {
		t.Fatalf("reopen container: %v", err)
	}
	names := make(map[string]bool, len(zr.File))
	for _, f := range zr.File {
		names[f.Name] = true
	}
	return names
}

func buildContainer(t *testing.T, entries map[string][]byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for name, data := range entries {
		w, err := zw.Create(name)
		if err != nil {
			t.Fatalf("create %q: %v", name, err)
		}
		if _, err := w.Write(data); err != nil {
			t.Fatalf("write %q: %v", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close container: %v", err)
	}
	return buf.Bytes()
}

func TestRoundTrip(t *testing.T) {
	store := assetstore.New()
	imgKey, err := store.Register(testPNG(t), "panel.png")
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	logoKey, err := store.Register([]byte("logo bytes"), "mark.png")
	if err != nil {
		t.Fatalf("Put() error = %v", err)
	}

	p := project.New("Night Scene")
	p.TitlePage.Subheader = "a short film"
	p.TitlePage.Background = project.EmptyRef()
	p.TitlePage.Logo = project.NewLogo(project.KeyRef(logoKey))
	p.TitlePage.Logo.Anchor = project.AnchorTopRight
	p.TitlePage.Logo.Size = project.SizeL
	p.EndPage.Background = project.EmptyRef()
	p.EndPage.MirrorTitle = true
	p.EndPage.ShowText = false
	p.LinkLogoSizes = true
	p.Panels = []project.Panel{
		{ID: "p1", Image: project.KeyRef(imgKey), Script: "open on [rain]"},
		{ID: "p2", Image: project.EmptyRef(), Script: ""},
	}

	var buf bytes.Buffer
	if _, err := Write(&buf, p, store); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	freshStore := assetstore.New()
	got, res, err := ReadBytes(buf.Bytes(), freshStore)
	if err != nil {
		t.Fatalf("ReadBytes() error = %v", err)
	}
	if len(res.Conditions) != 0 {
		t.Errorf("clean round trip reported conditions: %v", res.Conditions)
	}

	if diff := cmp.Diff(p, got, cmp.AllowUnexported(project.AssetRef{})); diff != "" {
		t.Errorf("project round trip mismatch (-want +got):\n%s", diff)
	}

	blob, err := freshStore.Resolve(imgKey)
	if err != nil {
		t.Fatalf("Resolve(%q) error = %v", imgKey, err)
	}
	if !bytes.Equal(blob, testPNG(t)) {
		t.Error("asset bytes changed through round trip")
	}
	if freshStore.Len() != 2 {
		t.Errorf("store has %d assets after load, want 2", freshStore.Len())
	}
}

func TestWritePackagesExactlyReachable(t *testing.T) {
	store := assetstore.New()
	usedKey, _ := store.Register([]byte("used"), "a.png")
	orphanKey, _ := store.Register([]byte("orphan"), "b.png")

	p := project.New("Board")
	p.TitlePage.Background = project.KeyRef(usedKey)
	p.EndPage.Background = project.EmptyRef()

	var buf bytes.Buffer
	if _, err := Write(&buf, p, store); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	names := entryNames(t, buf.Bytes())
	if !names[manifestEntry] {
		t.Error("container missing manifest")
	}
	if !names[assetPrefix+usedKey] {
		t.Error("container missing reachable asset")
	}
	if names[assetPrefix+orphanKey] {
		t.Error("container carries orphaned asset")
	}

	// Every asset entry must be reachable from the manifest.
	reach := p.ReachableKeys()
	for name := range names {
		key, ok := strings.CutPrefix(name, assetPrefix)
		if !ok {
			continue
		}
		if _, used := reach[key]; !used {
			t.Errorf("container entry %q is not referenced by the manifest", key)
		}
	}
}

func TestWriteMaterializesBuiltinsOncePerKind(t *testing.T) {
	store := assetstore.New()
	p := project.New("Board") // both outer pages use the built-in background
	p.TitlePage.Logo = project.NewLogo(project.BuiltinRef(project.BuiltinLogo))

	var buf bytes.Buffer
	if _, err := Write(&buf, p, store); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	// The caller's live project keeps its placeholders.
	if _, ok := p.TitlePage.Background.Builtin(); !ok {
		t.Errorf("Write modified the caller's project: background = %v", p.TitlePage.Background)
	}

	freshStore := assetstore.New()
	got, _, err := ReadBytes(buf.Bytes(), freshStore)
	if err != nil {
		t.Fatalf("ReadBytes() error = %v", err)
	}

	bgKey, ok := got.TitlePage.Background.Key()
	if !ok {
		t.Fatalf("title background not materialized: %v", got.TitlePage.Background)
	}
	endKey, ok := got.EndPage.Background.Key()
	if !ok {
		t.Fatalf("end background not materialized: %v", got.EndPage.Background)
	}
	if bgKey != endKey {
		t.Errorf("background materialized twice: %q and %q", bgKey, endKey)
	}
	logoKey, ok := got.TitlePage.Logo.Ref.Key()
	if !ok {
		t.Fatalf("logo not materialized: %v", got.TitlePage.Logo.Ref)
	}
	if logoKey == bgKey {
		t.Error("logo and background share a key")
	}

	names := entryNames(t, buf.Bytes())
	if !names[assetPrefix+bgKey] || !names[assetPrefix+logoKey] {
		t.Error("materialized assets missing from container")
	}
}

func TestWriteDropsDanglingRefs(t *testing.T) {
	dangling := "1b4e28ba-2fa1-11d2-883f-0016d3cca427.png"
	store := assetstore.New()
	p := project.New("Board")
	p.TitlePage.Background = project.KeyRef(dangling)
	p.EndPage.Background = project.EmptyRef()

	var buf bytes.Buffer
	res, err := Write(&buf, p, store)
	if err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if len(res.Conditions) == 0 {
		t.Error("dangling reference dropped without a condition")
	} else if res.Conditions[0].Code != errors.ErrCodeAssetResolution {
		t.Errorf("condition code = %v, want ASSET_RESOLUTION", res.Conditions[0].Code)
	}

	// The saved container holds an empty reference, while the caller's
	// project keeps the key so the session can still repair it.
	if key, _ := p.TitlePage.Background.Key(); key != dangling {
		t.Errorf("Write modified the caller's project: background = %v", p.TitlePage.Background)
	}
	got, _, err := ReadBytes(buf.Bytes(), assetstore.New())
	if err != nil {
		t.Fatalf("ReadBytes() error = %v", err)
	}
	if !got.TitlePage.Background.IsEmpty() {
		t.Errorf("saved background = %v, want empty", got.TitlePage.Background)
	}
}

func TestReadRejectsMissingManifest(t *testing.T) {
	container := buildContainer(t, map[string][]byte{
		"assets/1b4e28ba-2fa1-11d2-883f-0016d3cca427.png": []byte("data"),
	})

	store := assetstore.New()
	sentinel, _ := store.Register([]byte("keep me"), "keep.png")

	_, _, err := ReadBytes(container, store)
	if !errors.Is(err, errors.ErrCodeValidation) {
		t.Errorf("ReadBytes() error = %v, want VALIDATION_ERROR", err)
	}

	// A rejected container must not disturb the session store.
	if !store.Has(sentinel) || store.Len() != 1 {
		t.Error("store modified by rejected container")
	}
}

func TestReadRejectsMalformedManifest(t *testing.T) {
	container := buildContainer(t, map[string][]byte{
		manifestEntry: []byte("{not json"),
	})

	store := assetstore.New()
	sentinel, _ := store.Register([]byte("keep me"), "keep.png")

	_, _, err := ReadBytes(container, store)
	if !errors.Is(err, errors.ErrCodeInvalidManifest) {
		t.Errorf("ReadBytes() error = %v, want INVALID_MANIFEST", err)
	}
	if !store.Has(sentinel) {
		t.Error("store modified by rejected container")
	}
}

func TestReadNotAZip(t *testing.T) {
	store := assetstore.New()
	_, _, err := ReadBytes([]byte("definitely not a zip"), store)
	if !errors.Is(err, errors.ErrCodeValidation) {
		t.Errorf("ReadBytes() error = %v, want VALIDATION_ERROR", err)
	}
}

func TestReadHydrationDegradesMissingAssets(t *testing.T) {
	manifest := `{
  "version": 1,
  "title": "Board",
  "titlePage": {"header": "Board", "background": "1b4e28ba-2fa1-11d2-883f-0016d3cca427.png"},
  "panels": [{"id": "p1", "image": "2b4e28ba-2fa1-11d2-883f-0016d3cca427.png"}],
  "endPage": {"background": "", "text": "fin"}
}`
	present := "2b4e28ba-2fa1-11d2-883f-0016d3cca427.png"
	container := buildContainer(t, map[string][]byte{
		manifestEntry:         []byte(manifest),
		assetPrefix + present: []byte("panel art"),
	})

	store := assetstore.New()
	p, res, err := ReadBytes(container, store)
	if err != nil {
		t.Fatalf("ReadBytes() error = %v", err)
	}

	if !p.TitlePage.Background.IsEmpty() {
		t.Errorf("unresolvable background = %v, want empty", p.TitlePage.Background)
	}
	if key, ok := p.Panels[0].Image.Key(); !ok || key != present {
		t.Errorf("resolvable panel image = %v, want %q", p.Panels[0].Image, present)
	}
	if len(res.Conditions) == 0 {
		t.Error("degraded reference reported no condition")
	} else if res.Conditions[0].Code != errors.ErrCodeAssetResolution {
		t.Errorf("condition code = %v, want ASSET_RESOLUTION", res.Conditions[0].Code)
	}
}

func TestReadSkipsUnsafeEntries(t *testing.T) {
	manifest := `{
  "version": 1,
  "title": "Board",
  "titlePage": {"header": "Board", "background": ""},
  "panels": [],
  "endPage": {"background": "", "text": "fin"}
}`
	container := buildContainer(t, map[string][]byte{
		manifestEntry:               []byte(manifest),
		"assets/../escape.png":      []byte("evil"),
		"assets/not-a-valid-key":    []byte("odd"),
		"assets/nested/deep.png":    []byte("odd"),
		"unrelated/readme.txt":      []byte("ignored"),
		previewEntry:                []byte("old preview"),
	})

	store := assetstore.New()
	_, res, err := ReadBytes(container, store)
	if err != nil {
		t.Fatalf("ReadBytes() error = %v", err)
	}
	if store.Len() != 0 {
		t.Errorf("store has %d assets, want 0 (all entries unsafe or unrelated)", store.Len())
	}
	if len(res.Conditions) < 2 {
		t.Errorf("expected conditions for skipped entries, got %v", res.Conditions)
	}
}

func TestReadTitleFallbacks(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		want     string
	}{
		{
			"title present",
			`{"title": "Named", "titlePage": {"header": "Header", "background": ""}, "panels": [], "endPage": {"background": "", "text": ""}}`,
			"Named",
		},
		{
			"falls back to header",
			`{"titlePage": {"header": "Header Cut", "background": ""}, "panels": [], "endPage": {"background": "", "text": ""}}`,
			"Header Cut",
		},
		{
			"falls back to stock name",
			`{"titlePage": {"header": "", "background": ""}, "panels": [], "endPage": {"background": "", "text": ""}}`,
			project.DefaultTitle,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			container := buildContainer(t, map[string][]byte{manifestEntry: []byte(tt.manifest)})
			p, _, err := ReadBytes(container, assetstore.New())
			if err != nil {
				t.Fatalf("ReadBytes() error = %v", err)
			}
			if p.Title != tt.want {
				t.Errorf("Title = %q, want %q", p.Title, tt.want)
			}
		})
	}
}

func TestReadShowTextDefaultsOn(t *testing.T) {
	manifest := `{"title": "B", "titlePage": {"header": "", "background": ""}, "panels": [], "endPage": {"background": "", "text": "fin"}}`
	container := buildContainer(t, map[string][]byte{manifestEntry: []byte(manifest)})

	p, _, err := ReadBytes(container, assetstore.New())
	if err != nil {
		t.Fatalf("ReadBytes() error = %v", err)
	}
	if !p.EndPage.ShowText {
		t.Error("legacy manifest without showText hides the closing text")
	}
}

func TestReadRejectsBadLogoFields(t *testing.T) {
	manifest := `{"title": "B", "titlePage": {"header": "", "background": "", "logo": {"image": "", "anchor": "sideways"}}, "panels": [], "endPage": {"background": "", "text": ""}}`
	container := buildContainer(t, map[string][]byte{manifestEntry: []byte(manifest)})

	_, _, err := ReadBytes(container, assetstore.New())
	if !errors.Is(err, errors.ErrCodeInvalidManifest) {
		t.Errorf("ReadBytes() error = %v, want INVALID_MANIFEST", err)
	}
}

func TestPreviewEntry(t *testing.T) {
	t.Run("written for decodable panel art", func(t *testing.T) {
		store := assetstore.New()
		key, _ := store.Register(testPNG(t), "art.png")
		p := project.New("Board")
		p.TitlePage.Background = project.EmptyRef()
		p.EndPage.Background = project.EmptyRef()
		p.Panels = []project.Panel{{ID: "p1", Image: project.KeyRef(key)}}

		var buf bytes.Buffer
		if _, err := Write(&buf, p, store); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if !entryNames(t, buf.Bytes())[previewEntry] {
			t.Error("container missing preview")
		}
	})

	t.Run("save survives undecodable art", func(t *testing.T) {
		store := assetstore.New()
		key, _ := store.Register([]byte("not an image"), "art.png")
		p := project.New("Board")
		p.TitlePage.Background = project.EmptyRef()
		p.EndPage.Background = project.EmptyRef()
		p.Panels = []project.Panel{{ID: "p1", Image: project.KeyRef(key)}}

		var buf bytes.Buffer
		if _, err := Write(&buf, p, store); err != nil {
			t.Fatalf("Write() error = %v", err)
		}
		if entryNames(t, buf.Bytes())[previewEntry] {
			t.Error("preview written from undecodable bytes")
		}
	})
}

func TestSaveAndLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := dir + "/board.pfp"

	store := assetstore.New()
	key, _ := store.Register([]byte("art"), "a.png")
	p := project.New("Board")
	p.TitlePage.Background = project.KeyRef(key)
	p.EndPage.Background = project.EmptyRef()

	if _, err := Save(path, p, store); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	freshStore := assetstore.New()
	got, _, err := Load(path, freshStore)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got.Title != "Board" {
		t.Errorf("Title = %q, want %q", got.Title, "Board")
	}
	if !freshStore.Has(key) {
		t.Error("asset missing after file round trip")
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, _, err := Load(t.TempDir()+"/absent.pfp", assetstore.New())
	if !errors.Is(err, errors.ErrCodeIO) {
		t.Errorf("Load() error = %v, want IO_ERROR", err)
	}
}
