package media

import (
	"fmt"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"github.com/samber/lo"

	"chunkgif/pkg/fault"
)

// extensions maps every recognized still format identifier to its format.
var extensions = map[string]imaging.Format{
	"bmp":  imaging.BMP,
	"gif":  imaging.GIF,
	"jpg":  imaging.JPEG,
	"jpeg": imaging.JPEG,
	"png":  imaging.PNG,
	"tif":  imaging.TIFF,
	"tiff": imaging.TIFF,
}

// canonical is the extension written for each format.
var canonical = map[imaging.Format]string{
	imaging.BMP:  "bmp",
	imaging.GIF:  "gif",
	imaging.JPEG: "jpg",
	imaging.PNG:  "png",
	imaging.TIFF: "tif",
}

// Formats lists the recognized still format identifiers.
func Formats() []string {
	ids := lo.Keys(extensions)
	sort.Strings(ids)
	return ids
}

// ParseFormat resolves a still format identifier such as "png" or ".JPG".
func ParseFormat(id string) (imaging.Format, error) {
	ext := strings.ToLower(strings.TrimPrefix(id, "."))
	if !lo.Contains(Formats(), ext) {
		return 0, fault.Configf(
			errors.Errorf("unrecognized image format '%s' (supported: %s)", id, strings.Join(Formats(), ", ")),
			"invalid frame format",
		)
	}
	return imaging.FormatFromExtension(ext)
}

// Extension returns the file extension, without the dot, written for f.
func Extension(f imaging.Format) string {
	return canonical[f]
}

// OutputPath returns output when set, otherwise the base name of input with its
// last extension replaced by .gif, relative to the working directory:
// a.tar.bmp gives a.tar.gif.
func OutputPath(input, output string) string {
	if output != "" {
		return output
	}
	base := lo.Ternary(IsRemote(input), path.Base(remotePath(input)), filepath.Base(input))
	if base == "." || base == "/" || base == "" {
		base = "output"
	}
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".gif"
}

// StillPath names the still of an iteration after the animation output:
// out.gif, 3, PNG gives out.3.png.
func StillPath(output string, index int, f imaging.Format) string {
	return fmt.Sprintf("%s.%d.%s", strings.TrimSuffix(output, filepath.Ext(output)), index, Extension(f))
}
