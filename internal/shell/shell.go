// Package shell implements the interactive command interpreter: a
// thin client over internal/vfs, grounded on original_source's
// Client::ExecPrompt dispatch and Client::Help command table.
package shell

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"celv/internal/celv"
	"celv/internal/filetree"
	"celv/internal/logging"
	"celv/internal/vfs"
)

var shellLogger = logging.GetLogger().WithPrefix("shell")

// Shell reads commands from an io.Reader, dispatches each to the
// facade, and writes output to out/errOut.
type Shell struct {
	tree    *vfs.Tree
	out     io.Writer
	errOut  io.Writer
	running bool
}

// New returns a Shell operating over a fresh, empty facade tree.
func New(out, errOut io.Writer) *Shell {
	return &Shell{tree: vfs.NewTree(), out: out, errOut: errOut}
}

// Run drives the REPL from in until EOF or a `salir` command,
// printing the prompt before each line when interactive is true.
func (s *Shell) Run(in io.Reader, interactive bool) {
	if interactive {
		fmt.Fprintln(s.out, "Consola CELV iniciada!")
		fmt.Fprintln(s.out, "Escribe `ayuda` para la lista de comandos disponibles")
		fmt.Fprintln(s.out, "Escribe `salir` para terminar esta sesión. Recuerda que los cambios serán descartados al salir")
	}

	scanner := bufio.NewScanner(in)
	s.running = true
	for s.running {
		if interactive {
			fmt.Fprintf(s.out, "AELV [%s] >> ", s.tree.CurrentName())
		}
		if !scanner.Scan() {
			return
		}
		s.exec(scanner.Text())
		if interactive {
			fmt.Fprintln(s.out)
		}
	}
}

func (s *Shell) exec(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	command, args := fields[0], fields[1:]

	switch command {
	case "ayuda":
		s.help()
	case "salir":
		fmt.Fprintln(s.out, "Saliendo del interpretador")
		s.running = false
	case "ls":
		s.list()
	case "ir":
		name := ""
		if len(args) > 0 {
			name = args[0]
		}
		s.changeDirectory(name)
	case "crear_dir":
		s.requireArgs(command, args, 1, func() { s.createFile(args[0], vfs.KindDir) })
	case "crear_archivo":
		s.requireArgs(command, args, 1, func() { s.createFile(args[0], vfs.KindFile) })
	case "eliminar":
		s.requireArgs(command, args, 1, func() { s.remove(args[0]) })
	case "leer":
		s.requireArgs(command, args, 1, func() { s.read(args[0]) })
	case "escribir":
		s.write(args)
	case "celv_iniciar":
		s.celvInit()
	case "celv_historia":
		s.celvHistory()
	case "celv_vamos":
		s.requireArgs(command, args, 1, func() { s.celvGo(args[0]) })
	case "celv_version":
		s.celvVersion()
	case "celv_fusion":
		s.requireArgs(command, args, 2, func() { s.celvFusion(args[0], args[1]) })
	case "celv_importar":
		s.requireArgs(command, args, 1, func() { s.celvImport(args[0]) })
	default:
		fmt.Fprintln(s.errOut, red(command+" is not a valid known command."))
	}
}

func (s *Shell) requireArgs(command string, args []string, n int, fn func()) {
	if len(args) < n {
		fmt.Fprintln(s.errOut, red(fmt.Sprintf("Missing argument for command: %s", command)))
		return
	}
	fn()
}

func (s *Shell) list() {
	entries, err := s.tree.List()
	if err != nil {
		s.reportErr(err)
		return
	}
	for _, e := range entries {
		if e.Kind == vfs.KindDir {
			fmt.Fprintln(s.out, boldBlue(e.Name))
		} else {
			fmt.Fprintln(s.out, e.Name)
		}
	}
}

func (s *Shell) changeDirectory(name string) {
	if err := s.tree.ChangeDirectory(name); err != nil {
		s.reportErr(err)
	}
}

func (s *Shell) createFile(name string, kind vfs.Kind) {
	if err := s.tree.CreateFile(name, kind); err != nil {
		s.reportErr(err)
	}
}

func (s *Shell) remove(name string) {
	if err := s.tree.RemoveFile(name); err != nil {
		s.reportErr(err)
	}
}

func (s *Shell) read(name string) {
	content, err := s.tree.ReadFile(name)
	if err != nil {
		s.reportErr(err)
		return
	}
	fmt.Fprintf(s.out, "Reading %s..\n", boldCyan(name))
	fmt.Fprintln(s.out, content)
}

func (s *Shell) write(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(s.errOut, red("Error, filename and content required"))
		return
	}
	name := args[0]
	content := strings.Join(args[1:], " ")
	if err := s.tree.WriteFile(name, content); err != nil {
		s.reportErr(err)
	}
}

func (s *Shell) celvInit() {
	if err := s.tree.CelvInit(); err != nil {
		s.reportErr(err)
		return
	}
	fmt.Fprintln(s.out, "Control de versiones activado")
}

func (s *Shell) withEngine(fn func(e *celv.Engine)) {
	e, active := s.tree.Engine()
	if !active {
		s.reportErr(celv.ErrCelvInactive)
		return
	}
	fn(e)
}

func (s *Shell) celvHistory() {
	s.withEngine(func(e *celv.Engine) {
		for _, action := range e.GetHistory() {
			fmt.Fprintln(s.out, action.Render())
		}
	})
}

func (s *Shell) celvVersion() {
	s.withEngine(func(e *celv.Engine) {
		fmt.Fprintln(s.out, boldMagenta(fmt.Sprintf("%d", e.GetVersion())))
	})
}

func (s *Shell) celvGo(raw string) {
	v, err := parseVersion(raw)
	if err != nil {
		s.reportErr(err)
		return
	}
	s.withEngine(func(e *celv.Engine) {
		if err := e.SetVersion(v); err != nil {
			s.reportErr(err)
		}
	})
}

func (s *Shell) celvFusion(rawA, rawB string) {
	a, err := parseVersion(rawA)
	if err != nil {
		s.reportErr(err)
		return
	}
	b, err := parseVersion(rawB)
	if err != nil {
		s.reportErr(err)
		return
	}
	s.withEngine(func(e *celv.Engine) {
		merged, err := e.Merge(a, b)
		if err != nil {
			s.reportErr(err)
			return
		}
		fmt.Fprintln(s.out, boldMagenta(fmt.Sprintf("Fusión completada en la versión %d", merged)))
	})
}

func (s *Shell) celvImport(path string) {
	s.withEngine(func(e *celv.Engine) {
		if err := e.ImportLocalPath(path); err != nil {
			s.reportErr(err)
		}
	})
}

func parseVersion(raw string) (filetree.Version, error) {
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, errors.New("Invalid version")
	}
	return filetree.Version(n), nil
}

func (s *Shell) reportErr(err error) {
	shellLogger.Debug("command failed: %v", err)
	fmt.Fprintln(s.errOut, red(err.Error()))
}

func (s *Shell) help() {
	fmt.Fprint(s.out, "Para correr un comando, usa: \n")
	fmt.Fprint(s.out, "\t<comando> [argumentos]\n")
	fmt.Fprint(s.out, "Los comandos disponibles son: \n")
	fmt.Fprint(s.out, "\t- salir : cierra esta terminal\n")
	fmt.Fprint(s.out, "\t- ayuda : imprime este mensaje\n")
	fmt.Fprint(s.out, "\t- crear_dir nombre_dir : Crea un directorio con el nombre especificado\n")
	fmt.Fprint(s.out, "\t- crear_archivo nombre_archivo : Crea un archivo vacío con el nombre especificado\n")
	fmt.Fprint(s.out, "\t- eliminar nombre_archivo : Elimina el archivo especificado por nombre_archivo\n")
	fmt.Fprint(s.out, "\t- leer nombre_archivo : Lee el contenido del archivo y lo imprime en la terminal.\n")
	fmt.Fprint(s.out, "\t- escribir nombre_archivo contenido : Reemplaza el contenido del archivo especificado\n")
	fmt.Fprint(s.out, "\t- ir nombre_archivo : navega al directorio llamado `nombre_archivo`\n")
	fmt.Fprint(s.out, "\t- ir : navega al directorio padre del nodo actual\n")
	fmt.Fprint(s.out, "\t- celv_iniciar : Inicializa control de versiones en el subarbol representado por el directorio actual\n")
	fmt.Fprint(s.out, "\t- celv_historia : Muestra el historial de cambios para el control de versiones actualmente activo\n")
	fmt.Fprint(s.out, "\t- celv_vamos version : cambia la version actual a la version especificada\n")
	fmt.Fprint(s.out, "\t- celv_version : imprime la version actual\n")
	fmt.Fprint(s.out, "\t- celv_fusion version1 version2 : Trata de fusionar las dos versiones especificadas\n")
	fmt.Fprint(s.out, "\t- celv_importar camino_directorio : Imita la estructura de archivos del directorio especificado\n")
}
