package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
)

func newTestLocal(t *testing.T) *Local {
	t.Helper()
	l, err := NewLocal(t.TempDir(), "http://localhost:8000/storage/")
	if err != nil {
		t.Fatalf("NewLocal 失败: %v", err)
	}
	return l
}

func TestLocal_PutOpenDelete(t *testing.T) {
	l := newTestLocal(t)
	ctx := context.Background()

	if err := l.Put(ctx, "lessons/l1/a.txt", strings.NewReader("hello"), 5, "text/plain"); err != nil {
		t.Fatalf("Put 失败: %v", err)
	}

	ok, err := l.Exists(ctx, "lessons/l1/a.txt")
	if err != nil || !ok {
		t.Fatalf("期望文件存在: ok=%v err=%v", ok, err)
	}

	rc, err := l.Open(ctx, "lessons/l1/a.txt")
	if err != nil {
		t.Fatalf("Open 失败: %v", err)
	}
	b, _ := io.ReadAll(rc)
	rc.Close()
	if string(b) != "hello" {
		t.Errorf("期望内容 hello，实际=%s", b)
	}

	if err := l.Delete(ctx, "lessons/l1/a.txt"); err != nil {
		t.Fatalf("Delete 失败: %v", err)
	}
	if _, err := l.Open(ctx, "lessons/l1/a.txt"); !errors.Is(err, ErrNotExist) {
		t.Errorf("期望 ErrNotExist，实际: %v", err)
	}

	// 重复删除视为成功
	if err := l.Delete(ctx, "lessons/l1/a.txt"); err != nil {
		t.Errorf("删除不存在的文件应成功: %v", err)
	}
}

func TestLocal_RejectsTraversal(t *testing.T) {
	l := newTestLocal(t)
	ctx := context.Background()

	if err := l.Put(ctx, "../../etc/passwd", strings.NewReader("x"), 1, ""); err != nil {
		t.Fatalf("越界路径应被规整到根目录内: %v", err)
	}
	if _, err := l.path(""); err == nil {
		t.Error("空 key 应被拒绝")
	}
}

func TestLocal_URL(t *testing.T) {
	l := newTestLocal(t)
	got := l.URL("/submissions/a1/b.pdf")
	if got != "http://localhost:8000/storage/submissions/a1/b.pdf" {
		t.Errorf("URL 不符合预期: %s", got)
	}
}

func TestLocal_Walk(t *testing.T) {
	l := newTestLocal(t)
	ctx := context.Background()
	_ = l.Put(ctx, "lessons/l1/a.pdf", strings.NewReader("a"), 1, "")
	_ = l.Put(ctx, "lessons/l2/b.pdf", strings.NewReader("bb"), 2, "")
	_ = l.Put(ctx, "submissions/s1/c.pdf", strings.NewReader("c"), 1, "")

	var keys []string
	err := l.Walk(ctx, "lessons", func(o Object) error {
		keys = append(keys, o.Key)
		return nil
	})
	if err != nil {
		t.Fatalf("Walk 失败: %v", err)
	}
	if len(keys) != 2 {
		t.Errorf("期望 2 个对象，实际=%v", keys)
	}

	// 不存在的前缀不报错
	if err := l.Walk(ctx, "thumbnails", func(Object) error { return nil }); err != nil {
		t.Errorf("不存在的前缀不应报错: %v", err)
	}
}

func TestClassify(t *testing.T) {
	cases := map[string]string{
		"application/pdf":    FileTypePDF,
		"application/msword": FileTypeDoc,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document": FileTypeDoc,
		"text/plain":      FileTypeDoc,
		"image/png":       FileTypeImage,
		"video/mp4":       FileTypeVideo,
		"audio/mpeg":      FileTypeAudio,
		"application/zip": FileTypeOther,
		"":                FileTypeOther,
	}
	for mt, want := range cases {
		if got := Classify(mt); got != want {
			t.Errorf("Classify(%q)=%s，期望 %s", mt, got, want)
		}
	}
}

func TestDetectMIME(t *testing.T) {
	pdf := bytes.NewReader([]byte("%PDF-1.4\n%\xe2\xe3\xcf\xd3\n1 0 obj\n"))
	mt, err := DetectMIME(pdf, "x.bin", "application/octet-stream")
	if err != nil {
		t.Fatalf("DetectMIME 失败: %v", err)
	}
	if mt != "application/pdf" {
		t.Errorf("期望 application/pdf，实际=%s", mt)
	}
	if pos, _ := pdf.Seek(0, io.SeekCurrent); pos != 0 {
		t.Errorf("读取后应重置到起始位置，实际 pos=%d", pos)
	}

	txt := bytes.NewReader([]byte("a b c"))
	mt, _ = DetectMIME(txt, "notes.txt", "text/markdown")
	if mt != "text/markdown" {
		t.Errorf("纯文本应回退到声明类型，实际=%s", mt)
	}
}

func TestHumanSize(t *testing.T) {
	cases := map[int64]string{
		0:                "0 B",
		512:              "512 B",
		1024:             "1024 B",
		1536:             "1.5 KB",
		10 * 1024 * 1024: "10 MB",
	}
	for in, want := range cases {
		if got := HumanSize(in); got != want {
			t.Errorf("HumanSize(%d)=%s，期望 %s", in, got, want)
		}
	}
}
