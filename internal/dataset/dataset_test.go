package dataset

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/jmylchreest/glazecat/internal/catalog"
	"github.com/jmylchreest/glazecat/internal/colour"
	"github.com/jmylchreest/glazecat/internal/fetch"
	"github.com/stretchr/testify/require"
)

func rgbPtr(r, g, b uint8) *colour.RGB {
	return &colour.RGB{R: r, G: g, B: b}
}

func TestListingRoundTrip(t *testing.T) {
	rows := RowsFromProducts([]catalog.Product{
		{Code: "SC-74", Name: "Hot Tamale", ImageURL: "https://cdn.example.com/SC-74.jpg"},
		{Code: "SC-1", Name: "Moss, Green", ImageURL: "https://cdn.example.com/SC-1.jpg"},
	})
	rows[0].LocalImagePath = "glaze_images/sc_74_cone06.jpg"
	rows[1].LocalImagePath = fetch.DownloadFailed

	path := filepath.Join(t.TempDir(), "out", "glazes_cone06.csv")
	require.NoError(t, SaveListing(path, rows))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(string(data), "code,color_name,image_url,local_image_path\n"))
	require.Contains(t, string(data), `"Moss, Green"`)

	got, err := LoadListing(path)
	require.NoError(t, err)
	if diff := cmp.Diff(rows, got); diff != "" {
		t.Errorf("listing mismatch (-want +got):\n%s", diff)
	}
	require.False(t, got[0].Failed())
	require.True(t, got[1].Failed())
}

func TestReadListingMissingColumn(t *testing.T) {
	_, err := ReadListing(strings.NewReader("code,color_name\nSC-1,Moss\n"))
	require.Error(t, err)

	_, err = ReadListing(strings.NewReader(""))
	require.Error(t, err)
}

func TestReadListingWithoutLocalPath(t *testing.T) {
	rows, err := ReadListing(strings.NewReader("image_url,code,color_name\nhttps://x/a.jpg,SC-1,Moss\n"))
	require.NoError(t, err)
	require.Equal(t, []ListingRow{{Code: "SC-1", Name: "Moss", ImageURL: "https://x/a.jpg"}}, rows)
	require.True(t, rows[0].Failed())
}

func TestColorsRoundTrip(t *testing.T) {
	records := []ColorRecord{
		{Code: "SC-74", Name: "Hot Tamale", Left: rgbPtr(200, 30, 10), Top: rgbPtr(0, 1, 255)},
		{Code: "SC-2", Name: "Failed"},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteColors(&buf, records))

	want := "code,color_name,left_color_hex,top_color_hex,left_color_rgb,top_color_rgb\n" +
		"SC-74,Hot Tamale,#c81e0a,#0001ff,\"(200, 30, 10)\",\"(0, 1, 255)\"\n" +
		"SC-2,Failed,,,,\n"
	require.Equal(t, want, buf.String())

	got, err := ReadColors(&buf)
	require.NoError(t, err)
	if diff := cmp.Diff(records, got); diff != "" {
		t.Errorf("colours mismatch (-want +got):\n%s", diff)
	}
	require.Len(t, Complete(got), 1)
}

func TestReadColorsHexOnly(t *testing.T) {
	got, err := ReadColors(strings.NewReader("code,color_name,left_color_hex,top_color_hex\nUG-1,Dusty Rose,#AABBCC,#fff\n"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, colour.RGB{R: 0xaa, G: 0xbb, B: 0xcc}, *got[0].Left)
	require.Equal(t, colour.RGB{R: 255, G: 255, B: 255}, *got[0].Top)
}

func TestReadColorsInvalidHex(t *testing.T) {
	_, err := ReadColors(strings.NewReader("code,color_name,left_color_hex,top_color_hex\nUG-1,Dusty Rose,#zzzzzz,#ffffff\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "UG-1")
}

func TestParseRGB(t *testing.T) {
	tests := []struct {
		in      string
		want    colour.RGB
		wantErr bool
	}{
		{in: "(1, 2, 3)", want: colour.RGB{R: 1, G: 2, B: 3}},
		{in: "255,0,128", want: colour.RGB{R: 255, B: 128}},
		{in: "(256, 0, 0)", wantErr: true},
		{in: "(1, 2)", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRGB(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRGB(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseRGB(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestAttachImages(t *testing.T) {
	records := []ColorRecord{{Code: "SC-1"}, {Code: "SC-2"}, {Code: "SC-3"}}
	AttachImages(records, []ListingRow{
		{Code: "SC-1", LocalImagePath: "a.jpg"},
		{Code: "SC-2", LocalImagePath: fetch.DownloadFailed},
	})
	require.Equal(t, "a.jpg", records[0].ImagePath)
	require.Empty(t, records[1].ImagePath)
	require.Empty(t, records[2].ImagePath)
}

type fakeSampler map[string]colour.RGB

func (f fakeSampler) SampleFile(path string) (colour.RGB, colour.RGB, error) {
	c, ok := f[path]
	if !ok {
		return colour.RGB{}, colour.RGB{}, errors.New("decode failed")
	}
	return c, colour.RGB{R: c.B, G: c.G, B: c.R}, nil
}

func TestBuilderBuild(t *testing.T) {
	sampler := fakeSampler{
		"a.jpg": {R: 10, G: 20, B: 30},
		"c.jpg": {R: 1, G: 2, B: 3},
	}
	rows := []ListingRow{
		{Code: "SC-1", Name: "One", LocalImagePath: "a.jpg"},
		{Code: "SC-2", Name: "Two", LocalImagePath: fetch.DownloadFailed},
		{Code: "SC-3", Name: "Three", LocalImagePath: "c.jpg"},
		{Code: "SC-4", Name: "Four", LocalImagePath: "corrupt.jpg"},
		{Code: "SC-5", Name: "Five"},
	}

	for _, workers := range []int{1, 3} {
		records := NewBuilder(sampler, BuilderOptions{Workers: workers}).Build(context.Background(), rows)
		want := []ColorRecord{
			{Code: "SC-1", Name: "One", ImagePath: "a.jpg", Left: rgbPtr(10, 20, 30), Top: rgbPtr(30, 20, 10)},
			{Code: "SC-2", Name: "Two"},
			{Code: "SC-3", Name: "Three", ImagePath: "c.jpg", Left: rgbPtr(1, 2, 3), Top: rgbPtr(3, 2, 1)},
			{Code: "SC-4", Name: "Four", ImagePath: "corrupt.jpg"},
			{Code: "SC-5", Name: "Five"},
		}
		if diff := cmp.Diff(want, records); diff != "" {
			t.Errorf("workers=%d records mismatch (-want +got):\n%s", workers, diff)
		}
	}
}

func TestBuilderWithRealImages(t *testing.T) {
	dir := t.TempDir()
	img := image.NewNRGBA(image.Rect(0, 0, 40, 40))
	for y := range 40 {
		for x := range 40 {
			img.SetNRGBA(x, y, color.NRGBA{R: 10, G: 20, B: 30, A: 128})
		}
	}
	path := filepath.Join(dir, "sc_1_cone06.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	corrupt := filepath.Join(dir, "corrupt.jpg")
	require.NoError(t, os.WriteFile(corrupt, []byte("not an image"), 0o644))

	sampler := colour.NewSampler(colour.DefaultSamplerConfig())
	records := NewBuilder(sampler, BuilderOptions{}).Build(context.Background(), []ListingRow{
		{Code: "SC-1", Name: "Translucent", LocalImagePath: path},
		{Code: "SC-2", Name: "Corrupt", LocalImagePath: corrupt},
	})

	require.Len(t, records, 2)
	require.True(t, records[0].Complete())
	require.Equal(t, "#84898e", records[0].Left.Hex())
	require.Equal(t, "#84898e", records[0].Top.Hex())
	require.False(t, records[1].Complete())
	require.Nil(t, records[1].Left)
}

func TestBuilderCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	records := NewBuilder(fakeSampler{"a.jpg": {}}, BuilderOptions{}).Build(ctx, []ListingRow{
		{Code: "SC-1", LocalImagePath: "a.jpg"},
	})
	require.Len(t, records, 1)
	require.False(t, records[0].Complete())
}
