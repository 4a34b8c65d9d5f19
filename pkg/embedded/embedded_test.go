package embedded

import (
	"testing"
	"testing/fstest"
)

// TestIsInitialized 测试初始化状态检测
func TestIsInitialized(t *testing.T) {
	initialized = false
	if IsInitialized() {
		t.Error("Expected IsInitialized() to return false before Init()")
	}

	Init(fstest.MapFS{})
	if !IsInitialized() {
		t.Error("Expected IsInitialized() to return true after Init()")
	}

	// 重置状态以避免影响其他测试
	initialized = false
}

// TestReadFileNotInitialized 测试未初始化时调用 ReadFile
func TestReadFileNotInitialized(t *testing.T) {
	initialized = false

	_, err := ReadFile("data/levels/easy.yaml")
	if err == nil {
		t.Fatal("Expected error when calling ReadFile() before Init()")
	}
	if err.Error() != "embedded package not initialized, call Init() first" {
		t.Errorf("Unexpected error message: %v", err)
	}
}

// TestReadFile 测试路径标准化与前缀检查
func TestReadFile(t *testing.T) {
	Init(fstest.MapFS{
		"data/levels/easy.yaml":   {Data: []byte("id: easy\n")},
		"data/levels/medium.yaml": {Data: []byte("id: medium\n")},
	})
	defer func() { initialized = false }()

	tests := []struct {
		name    string
		path    string
		want    string
		wantErr bool
	}{
		{name: "普通路径", path: "data/levels/easy.yaml", want: "id: easy\n"},
		{name: "带 ./ 前缀", path: "./data/levels/easy.yaml", want: "id: easy\n"},
		{name: "未知前缀", path: "assets/foo.png", wantErr: true},
		{name: "文件不存在", path: "data/levels/none.yaml", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := ReadFile(tt.path)
			if tt.wantErr {
				if err == nil {
					t.Errorf("expected error for %s", tt.path)
				}
				return
			}
			if err != nil {
				t.Fatalf("ReadFile(%s) error: %v", tt.path, err)
			}
			if string(data) != tt.want {
				t.Errorf("ReadFile(%s) = %q, want %q", tt.path, data, tt.want)
			}
		})
	}

	if !Exists("data/levels/medium.yaml") || Exists("data/levels/none.yaml") {
		t.Error("Exists returned unexpected result")
	}

	matches, err := Glob("data/levels/*.yaml")
	if err != nil || len(matches) != 2 {
		t.Errorf("Glob = %v, %v; want 2 matches", matches, err)
	}
}
