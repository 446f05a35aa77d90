package storage

import (
	"fmt"
	"io"
	"mime"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// 附件类型分类
const (
	FileTypePDF   = "pdf"
	FileTypeDoc   = "doc"
	FileTypeImage = "image"
	FileTypeVideo = "video"
	FileTypeAudio = "audio"
	FileTypeOther = "other"
)

const octetStream = "application/octet-stream"

// DetectMIME 基于文件内容嗅探 MIME，嗅探结果不明确时回退到上传头与扩展名
// 读取结束后 r 被重置到起始位置
func DetectMIME(r io.ReadSeeker, filename, headerType string) (string, error) {
	m, err := mimetype.DetectReader(r)
	if _, serr := r.Seek(0, io.SeekStart); serr != nil {
		return "", serr
	}
	if err != nil {
		return "", err
	}

	detected := m.String()
	if base, _, perr := mime.ParseMediaType(detected); perr == nil {
		detected = base
	}
	if detected != octetStream && detected != "text/plain" {
		return detected, nil
	}

	// 纯文本或二进制流时，优先相信更具体的声明类型
	if headerType != "" {
		if base, _, perr := mime.ParseMediaType(headerType); perr == nil && base != octetStream {
			return base, nil
		}
	}
	if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); byExt != "" {
		if base, _, perr := mime.ParseMediaType(byExt); perr == nil {
			return base, nil
		}
	}
	return detected, nil
}

// ExtensionFor 返回用于存储文件名的扩展名，优先保留原文件扩展名
func ExtensionFor(filename, mimeType string) string {
	if ext := strings.ToLower(filepath.Ext(filename)); ext != "" && len(ext) <= 10 {
		return ext
	}
	if m := mimetype.Lookup(mimeType); m != nil {
		return m.Extension()
	}
	return ""
}

// Classify 按 MIME 归类附件类型
func Classify(mimeType string) string {
	mt := strings.ToLower(mimeType)
	switch {
	case mt == "application/pdf":
		return FileTypePDF
	case mt == "application/msword",
		strings.HasPrefix(mt, "application/vnd.openxmlformats-officedocument"),
		strings.HasPrefix(mt, "application/vnd.ms-"),
		strings.HasPrefix(mt, "application/vnd.oasis.opendocument"),
		mt == "application/rtf",
		strings.HasPrefix(mt, "text/"):
		return FileTypeDoc
	case strings.HasPrefix(mt, "image/"):
		return FileTypeImage
	case strings.HasPrefix(mt, "video/"):
		return FileTypeVideo
	case strings.HasPrefix(mt, "audio/"):
		return FileTypeAudio
	default:
		return FileTypeOther
	}
}

// HumanSize 以 B/KB/MB/GB 表示文件大小，保留两位小数
func HumanSize(size int64) string {
	units := []string{"B", "KB", "MB", "GB"}
	v := float64(size)
	i := 0
	for v > 1024 && i < len(units)-1 {
		v /= 1024
		i++
	}
	s := strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
	return s + " " + units[i]
}
