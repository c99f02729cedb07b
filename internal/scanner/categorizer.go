package scanner

import (
	"path/filepath"
	"strings"
)

// Category is the semantic bucket a file is sorted into by extension
type Category string

const (
	CategoryImage    Category = "image"
	CategoryDocument Category = "document"
	CategoryVideo    Category = "video"
	CategoryAudio    Category = "audio"
	CategoryArchive  Category = "archive"
	CategoryCode     Category = "code"
	CategoryOther    Category = "other"
)

// AllCategories lists every category in display order
var AllCategories = []Category{
	CategoryImage,
	CategoryDocument,
	CategoryVideo,
	CategoryAudio,
	CategoryArchive,
	CategoryCode,
	CategoryOther,
}

var extensionCategories = map[string]Category{
	// Images
	"jpg": CategoryImage, "jpeg": CategoryImage, "png": CategoryImage, "gif": CategoryImage,
	"bmp": CategoryImage, "svg": CategoryImage, "webp": CategoryImage, "tif": CategoryImage,
	"tiff": CategoryImage, "heic": CategoryImage, "heif": CategoryImage, "ico": CategoryImage,
	"raw": CategoryImage, "cr2": CategoryImage, "nef": CategoryImage, "psd": CategoryImage,

	// Documents
	"pdf": CategoryDocument, "doc": CategoryDocument, "docx": CategoryDocument, "txt": CategoryDocument,
	"rtf": CategoryDocument, "odt": CategoryDocument, "xls": CategoryDocument, "xlsx": CategoryDocument,
	"ods": CategoryDocument, "csv": CategoryDocument, "ppt": CategoryDocument, "pptx": CategoryDocument,
	"odp": CategoryDocument, "md": CategoryDocument, "epub": CategoryDocument, "pages": CategoryDocument,

	// Video
	"mp4": CategoryVideo, "mkv": CategoryVideo, "avi": CategoryVideo, "mov": CategoryVideo,
	"wmv": CategoryVideo, "flv": CategoryVideo, "webm": CategoryVideo, "m4v": CategoryVideo,
	"mpg": CategoryVideo, "mpeg": CategoryVideo, "3gp": CategoryVideo,

	// Audio
	"mp3": CategoryAudio, "wav": CategoryAudio, "flac": CategoryAudio, "aac": CategoryAudio,
	"ogg": CategoryAudio, "m4a": CategoryAudio, "wma": CategoryAudio, "aiff": CategoryAudio,
	"opus": CategoryAudio,

	// Archives
	"zip": CategoryArchive, "rar": CategoryArchive, "7z": CategoryArchive, "tar": CategoryArchive,
	"gz": CategoryArchive, "tgz": CategoryArchive, "bz2": CategoryArchive, "xz": CategoryArchive,
	"zst": CategoryArchive, "iso": CategoryArchive, "dmg": CategoryArchive,

	// Source code
	"go": CategoryCode, "java": CategoryCode, "py": CategoryCode, "js": CategoryCode,
	"ts": CategoryCode, "tsx": CategoryCode, "jsx": CategoryCode, "c": CategoryCode,
	"h": CategoryCode, "cpp": CategoryCode, "hpp": CategoryCode, "cs": CategoryCode,
	"rb": CategoryCode, "rs": CategoryCode, "php": CategoryCode, "swift": CategoryCode,
	"kt": CategoryCode, "scala": CategoryCode, "sh": CategoryCode, "sql": CategoryCode,
	"html": CategoryCode, "css": CategoryCode, "json": CategoryCode, "xml": CategoryCode,
	"yaml": CategoryCode, "yml": CategoryCode,
}

// Categorize maps a lowercase extension, with or without the leading dot,
// to its category. Unknown and empty extensions map to CategoryOther.
func Categorize(ext string) Category {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))
	if category, ok := extensionCategories[ext]; ok {
		return category
	}
	return CategoryOther
}

// ExtensionOf returns the lowercase extension of path without the dot
func ExtensionOf(path string) string {
	return strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
}
