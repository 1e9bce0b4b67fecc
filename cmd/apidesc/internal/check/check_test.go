package check

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/broady/apidesc/apigen"
	"github.com/broady/apidesc/cmd/apidesc/internal/project"
)

const handlerSource = `package api

//api:schema id=frapi:user
type User struct {
	Name string ` + "`json:\"name\"`" + `
}

//api:handler path=/users schema=User
type UserHandler struct{}

//api:read
//api:error id=frapi:notfound code=404 description="No such user"
func (UserHandler) Read() {}
`

func chdirModule(t *testing.T) string {
	t.Helper()
	t.Setenv("GOWORK", "off")
	dir := t.TempDir()
	files := map[string]string{
		"go.mod":       "module example.com/api\n\ngo 1.22\n",
		"api.go":       handlerSource,
		"apidesc.yaml": "id: frapi:test\n",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
	t.Chdir(dir)
	return dir
}

func TestRun(t *testing.T) {
	chdirModule(t)

	var stdout, stderr bytes.Buffer
	g := &project.Globals{Package: ".", Stdout: &stdout, Stderr: &stderr}
	if err := (&Cmd{}).Run(g); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if want := "1 resources, 1 definitions, 1 errors"; !strings.Contains(stdout.String(), want) {
		t.Errorf("output %q should contain %q", stdout.String(), want)
	}
}

func TestRun_UpToDate(t *testing.T) {
	dir := chdirModule(t)
	out := filepath.Join(dir, "docs")

	var stdout, stderr bytes.Buffer
	g := &project.Globals{Package: ".", Stdout: &stdout, Stderr: &stderr}

	err := (&Cmd{Out: out}).Run(g)
	if err == nil || !strings.Contains(err.Error(), "api.en.json") {
		t.Fatalf("expected stale api.en.json before generation, got %v", err)
	}

	p, err := project.Load(g)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := p.Generator.ToDir(out); err != nil {
		t.Fatal(err)
	}

	stdout.Reset()
	if err := (&Cmd{Out: out}).Run(g); err != nil {
		t.Fatalf("Run after generation: %v", err)
	}
	if !strings.Contains(stdout.String(), "1 documents up to date") {
		t.Errorf("unexpected output %q", stdout.String())
	}

	if err := os.WriteFile(filepath.Join(out, "api.en.json"), []byte("{}\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := (&Cmd{Out: out}).Run(g); err == nil {
		t.Error("expected error for modified document")
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	chdirModule(t)
	if err := os.WriteFile(apigen.DefaultConfigFile, []byte("locales: [en, en]\nid: x\n"), 0644); err != nil {
		t.Fatal(err)
	}
	var stdout, stderr bytes.Buffer
	g := &project.Globals{Package: ".", Stdout: &stdout, Stderr: &stderr}
	if err := (&Cmd{}).Run(g); err == nil || !strings.Contains(err.Error(), "duplicate locale") {
		t.Fatalf("expected duplicate locale error, got %v", err)
	}
}
