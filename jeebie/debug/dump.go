package debug

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/bradleyjkemp/memviz"
	"github.com/valerio/jeebie-core/jeebie/video"
)

// WriteStateGraph writes a Graphviz rendering of the value graph reachable
// from state, which should be a pointer.
func WriteStateGraph(w io.Writer, state any) {
	memviz.Map(w, state)
}

// FrameImage converts a frame to an image.
func FrameImage(frame *video.FrameBuffer) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, video.FramebufferWidth, video.FramebufferHeight))
	for y := range video.FramebufferHeight {
		for x := range video.FramebufferWidth {
			r, g, b, a := frame.GetPixel(x, y).RGBA()
			img.SetRGBA(x, y, color.RGBA{R: r, G: g, B: b, A: a})
		}
	}
	return img
}

// SaveFramePNGToDir writes frame as <baseName>_<timestamp>.png inside
// directory, or the working directory when it is empty. It returns the path.
func SaveFramePNGToDir(frame *video.FrameBuffer, baseName, directory string) (string, error) {
	if frame == nil {
		return "", fmt.Errorf("no frame to save")
	}
	if directory == "" {
		directory = "."
	}

	filename := fmt.Sprintf("%s_%s.png", baseName, time.Now().Format("20060102_150405"))
	path := filepath.Join(directory, filename)

	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating %s: %w", path, err)
	}
	defer file.Close()

	if err := png.Encode(file, FrameImage(frame)); err != nil {
		return "", fmt.Errorf("encoding png: %w", err)
	}
	return path, nil
}
