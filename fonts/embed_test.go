package fonts

import (
	"bytes"
	"testing"
)

func TestLoadBuiltin(t *testing.T) {
	for _, name := range Names() {
		data, err := Load("embed:" + name)
		if err != nil {
			t.Fatalf("读取 %s 失败: %v", name, err)
		}
		if len(data) == 0 {
			t.Fatalf("%s 数据为空", name)
		}
	}
	if _, err := Load("Inter-Regular.ttf"); err == nil {
		t.Fatalf("未知字体应当报错")
	}
}

func TestForStyle(t *testing.T) {
	bold, _ := Load(Bold)
	if !bytes.Equal(ForStyle(true, false), bold) {
		t.Fatalf("粗体应返回 bold 字体")
	}
	if bytes.Equal(ForStyle(false, true), ForStyle(false, false)) {
		t.Fatalf("斜体与常规字体不应相同")
	}
}
