package cmd

import (
	"bytes"
	"encoding/json"
	"errors"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/KaramelBytes/cpkdash/internal/dataset"
)

const fleetCSV = `Fecha,Unidad,Flota,Tipo de Carga,CPK total,kmstotales
2024-10-01,101,Norte,Seca,10,100
2024-10-02,101,Norte,Seca,14,120
2024-10-09,102,Norte,Refrigerada,8,90
2024-10-15,201,Sur,Seca,20,300
2024-11-04,201,Sur,Refrigerada,22,310
2024-11-20,301,Centro,Seca,5,80
`

// resetFlags restores every flag to its default so commands can run more than once per process.
func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func runCmd(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	cfg = nil
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func writeFixture(t *testing.T, name, body string) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestViewMarkdown(t *testing.T) {
	path := writeFixture(t, "flota.csv", fleetCSV)
	out, err := runCmd(t, "view", path, "--view", "fleet", "--fleet", "Norte")
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	for _, want := range []string{"# Resumen de Flota", "[CPK BY FLEET]", "Norte"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "Centro") {
		t.Fatalf("fleet filter not applied:\n%s", out)
	}
}

func TestViewJSONTopMode(t *testing.T) {
	path := writeFixture(t, "flota.csv", fleetCSV)
	out, err := runCmd(t, "view", path, "--view", "table", "--format", "json", "--period", "Octubre", "--top-n", "1")
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	var got struct {
		View    string          `json:"view"`
		Rows    int             `json:"rows"`
		Ranking json.RawMessage `json:"ranking"`
	}
	if err := json.Unmarshal([]byte(out), &got); err != nil {
		t.Fatalf("decode json: %v\n%s", err, out)
	}
	if got.View != "table" || len(got.Ranking) == 0 {
		t.Fatalf("unexpected payload: %+v", got)
	}
	// Best unit 102 (one row) and worst unit 201 (one October row).
	if got.Rows != 2 {
		t.Fatalf("rows = %d, want 2", got.Rows)
	}
}

func TestViewPNG(t *testing.T) {
	path := writeFixture(t, "flota.csv", fleetCSV)
	dst := filepath.Join(t.TempDir(), "charts", "box.png")
	out, err := runCmd(t, "view", path, "--view", "box", "--format", "png", "-o", dst)
	if err != nil {
		t.Fatalf("view: %v", err)
	}
	if !strings.Contains(out, "✓ Wrote box view (6 rows)") {
		t.Fatalf("unexpected output: %s", out)
	}
	f, err := os.Open(dst)
	if err != nil {
		t.Fatalf("open png: %v", err)
	}
	defer f.Close()
	if _, err := png.DecodeConfig(f); err != nil {
		t.Fatalf("decode png: %v", err)
	}
}

func TestViewRejectsUnknownView(t *testing.T) {
	path := writeFixture(t, "flota.csv", fleetCSV)
	if _, err := runCmd(t, "view", path, "--view", "pie"); err == nil {
		t.Fatalf("expected unknown view error")
	}
}

func TestExportWritesFilteredRows(t *testing.T) {
	path := writeFixture(t, "flota.csv", fleetCSV)
	dst := filepath.Join(t.TempDir(), dataset.DefaultExportName)
	out, err := runCmd(t, "export", path, "--cpk-max", "5", "-o", dst)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !strings.Contains(out, "✓ Exported 1 rows") {
		t.Fatalf("unexpected output: %s", out)
	}
	b, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	want := "Fecha,Unidad,Flota,Tipo de Carga,CPK total,kmstotales,Mes,Año\n2024-11-20,301,Centro,Seca,5,80,11,2024\n"
	if string(b) != want {
		t.Fatalf("export = %q", b)
	}
}

func TestExportFleetWithComma(t *testing.T) {
	path := writeFixture(t, "flota.csv", fleetCSV+"2024-10-03,401,\"Norte, Sur\",Seca,9,70\n")
	out, err := runCmd(t, "export", path, "--fleet", "Norte, Sur", "-o", "-")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	want := "Fecha,Unidad,Flota,Tipo de Carga,CPK total,kmstotales,Mes,Año\n2024-10-03,401,\"Norte, Sur\",Seca,9,70,10,2024\n"
	if out != want {
		t.Fatalf("export = %q", out)
	}
}

func TestExportBadDateRange(t *testing.T) {
	path := writeFixture(t, "flota.csv", fleetCSV)
	_, err := runCmd(t, "export", path, "--from", "2024-11-01", "--to", "2024-10-01", "-o", "-")
	if err == nil {
		t.Fatalf("expected error for inverted range")
	}
}

func TestInspectReportsMissingColumns(t *testing.T) {
	path := writeFixture(t, "parcial.csv", "Fecha,Unidad\n2024-10-01,1\n")
	_, err := runCmd(t, "inspect", path)
	if !errors.Is(err, dataset.ErrMissingColumn) {
		t.Fatalf("err = %v, want ErrMissingColumn", err)
	}
	if !strings.Contains(err.Error(), "kmstotales") {
		t.Fatalf("error does not name missing column: %v", err)
	}
}

func TestInspectSummary(t *testing.T) {
	path := writeFixture(t, "flota.csv", fleetCSV+"fecha rota,401,Sur,Seca,n/a,\n")
	out, err := runCmd(t, "inspect", path)
	if err != nil {
		t.Fatalf("inspect: %v", err)
	}
	for _, want := range []string{"[DATASET SUMMARY]", "Rows: 7", "Fecha 1, CPK total 1, kmstotales 1", "[FILTER OPTIONS]"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestExpandInputsDedupes(t *testing.T) {
	dir := t.TempDir()
	for _, n := range []string{"a.csv", "b.csv"} {
		if err := os.WriteFile(filepath.Join(dir, n), []byte(fleetCSV), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	got := expandInputs([]string{filepath.Join(dir, "*.csv"), filepath.Join(dir, "a.csv"), filepath.Join(dir, "nope.csv")})
	if len(got) != 2 {
		t.Fatalf("got %v", got)
	}
}

func TestConfigSetAndShow(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if _, err := runCmd(t, "config", "set", "top_n", "7"); err != nil {
		t.Fatalf("config set: %v", err)
	}
	out, err := runCmd(t, "config", "show")
	if err != nil {
		t.Fatalf("config show: %v", err)
	}
	if !strings.Contains(out, "top_n: 7") {
		t.Fatalf("config show:\n%s", out)
	}
	if _, err := runCmd(t, "config", "set", "nope", "1"); err == nil {
		t.Fatalf("expected unknown key error")
	}
}
