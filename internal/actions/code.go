package actions

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"eva/internal/logger"
)

// CodeGenerator produces source text from a natural-language
// description. The model provider backs it.
type CodeGenerator interface {
	GenerateCode(ctx context.Context, instruction string) (string, error)
}

type codeHandlers struct {
	interpreter string
	timeout     time.Duration
	workDir     string
	gen         CodeGenerator
}

// RegisterCode wires the code execution and 3D generation actions into
// the registry. workDir receives generated .scad files.
// stripFences unwraps a reply the model insisted on fencing anyway.
func stripFences(code string) string {
	trimmed := strings.TrimSpace(code)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if i := strings.IndexByte(trimmed, '\n'); i >= 0 {
		trimmed = trimmed[i+1:]
	}
	return strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(trimmed), "```"))
}

func RegisterCode(reg *Registry, interpreter string, timeout time.Duration, workDir string, gen CodeGenerator) {
	if interpreter == "" {
		interpreter = "python3"
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	h := &codeHandlers{interpreter: interpreter, timeout: timeout, workDir: workDir, gen: gen}
	reg.Register("execute_code", h.execute)
	reg.Register("generate_3d_object", h.generate3D)
}

// execute runs the snippet under the configured interpreter with a
// hard timeout. Stdout and stderr are both reported so the user sees
// tracebacks.
func (h *codeHandlers) execute(ctx context.Context, ents Entities) Result {
	code := ents.String("code")

	runCtx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, h.interpreter, "-c", code)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if runCtx.Err() == context.DeadlineExceeded {
		return errorRecord(fmt.Sprintf("L'exécution du code a dépassé la limite de %s.", h.timeout), nil)
	}
	if err != nil {
		logger.Warn("code: execution failed: %v", err)
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return &Record{
			Status:  StatusError,
			Summary: "L'exécution du code a échoué :\n" + msg,
			Fields:  map[string]string{"stderr": msg},
		}
	}

	out := strings.TrimSpace(stdout.String())
	if out == "" {
		return &Record{Status: StatusSuccess, Summary: "Le code s'est exécuté sans produire de sortie."}
	}
	return &Record{
		Status:  StatusSuccess,
		Summary: "Résultat de l'exécution :\n" + out,
		Fields:  map[string]string{"stdout": out},
	}
}

// generate3D asks the model for OpenSCAD source and writes it to the
// working directory so a slicer or viewer can pick it up.
func (h *codeHandlers) generate3D(ctx context.Context, ents Entities) Result {
	desc := ents.First("description", "object")
	if h.gen == nil {
		return errorRecord("La génération d'objets 3D n'est pas configurée.", nil)
	}

	instruction := fmt.Sprintf("Écris uniquement du code OpenSCAD, sans aucune explication, pour modéliser : %s", desc)
	code, err := h.gen.GenerateCode(ctx, instruction)
	if err != nil {
		logger.Error("code: generate 3d %q: %v", desc, err)
		return errorRecord("Désolé, je n'ai pas pu générer cet objet 3D.", nil)
	}
	code = stripFences(code)

	dir := h.workDir
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, fmt.Sprintf("objet_%s.scad", uuid.NewString()[:8]))
	if err := os.WriteFile(path, []byte(code), 0o644); err != nil {
		logger.Error("code: write %s: %v", path, err)
		return errorRecord("Désolé, je n'ai pas pu enregistrer le fichier 3D.", nil)
	}
	return &Record{
		Status:  StatusSuccess,
		Summary: fmt.Sprintf("J'ai généré l'objet 3D « %s » dans %s.", desc, path),
		Fields:  map[string]string{"path": path, "code": code},
	}
}
