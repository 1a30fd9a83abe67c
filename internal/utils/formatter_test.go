package utils

import (
	"strings"
	"testing"
)

func TestFormatGoCode(t *testing.T) {
	src := "package users\n\nimport \"fmt\"\n\ntype UserMapper struct{}\nfunc (*UserMapper) Name() string {\nreturn fmt.Sprint(\"x\")\n}\n"

	formatted, err := FormatGoCode("mapgen_users.go", []byte(src))
	if err != nil {
		t.Fatalf("FormatGoCode() error = %v", err)
	}
	if !strings.Contains(string(formatted), "type UserMapper struct{}\n\nfunc (*UserMapper) Name() string {\n\treturn fmt.Sprint(\"x\")\n}") {
		t.Errorf("unexpected layout:\n%s", formatted)
	}
}

func TestFormatGoCode_InvalidSyntax(t *testing.T) {
	_, err := FormatGoCode("mapgen_users.go", []byte("package users\n\nfunc {"))
	if err == nil {
		t.Fatal("expected an error")
	}
	if !strings.Contains(err.Error(), "invalid Go syntax") {
		t.Errorf("error = %v", err)
	}
}
