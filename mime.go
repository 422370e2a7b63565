package remotefs

import "strings"

// static, so lookups don't depend on the host's mime.types files
//
//nolint:gochecknoglobals
var extensionMimeTypes = map[string]string{
	"7z":    "application/x-7z-compressed",
	"avi":   "video/x-msvideo",
	"bmp":   "image/bmp",
	"bz2":   "application/x-bzip2",
	"css":   "text/css",
	"csv":   "text/csv",
	"doc":   "application/msword",
	"docx":  "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"env":   "application/x-env",
	"eot":   "application/vnd.ms-fontobject",
	"flac":  "audio/flac",
	"gif":   "image/gif",
	"gz":    "application/gzip",
	"htm":   "text/html",
	"html":  "text/html",
	"ico":   "image/x-icon",
	"ics":   "text/calendar",
	"jar":   "application/java-archive",
	"jpeg":  "image/jpeg",
	"jpg":   "image/jpeg",
	"js":    "application/javascript",
	"json":  "application/json",
	"jsonl": "application/jsonl",
	"md":    "text/markdown",
	"mjs":   "application/javascript",
	"mov":   "video/quicktime",
	"mp3":   "audio/mpeg",
	"mp4":   "video/mp4",
	"mpeg":  "video/mpeg",
	"oga":   "audio/ogg",
	"ogg":   "audio/ogg",
	"ogv":   "video/ogg",
	"otf":   "font/otf",
	"pdf":   "application/pdf",
	"png":   "image/png",
	"ppt":   "application/vnd.ms-powerpoint",
	"pptx":  "application/vnd.openxmlformats-officedocument.presentationml.presentation",
	"rar":   "application/vnd.rar",
	"rss":   "application/rss+xml",
	"rtf":   "application/rtf",
	"sh":    "application/x-sh",
	"svg":   "image/svg+xml",
	"tar":   "application/x-tar",
	"tif":   "image/tiff",
	"tiff":  "image/tiff",
	"toml":  "application/toml",
	"ttf":   "font/ttf",
	"txt":   "text/plain",
	"wasm":  "application/wasm",
	"wav":   "audio/wav",
	"weba":  "audio/webm",
	"webm":  "video/webm",
	"webp":  "image/webp",
	"woff":  "font/woff",
	"woff2": "font/woff2",
	"xhtml": "application/xhtml+xml",
	"xls":   "application/vnd.ms-excel",
	"xlsx":  "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
	"xml":   "application/xml",
	"yaml":  "application/yaml",
	"yml":   "application/yaml",
	"zip":   "application/zip",
}

// MimeTypeByExtension returns the MIME type associated with the file extension
// ext, which may or may not have a leading dot. Lookups are case-insensitive.
// An empty string is returned for unknown extensions.
//
// Unlike [mime.TypeByExtension], the table is static and the returned types
// never carry parameters.
func MimeTypeByExtension(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(ext, "."))

	return extensionMimeTypes[ext]
}
