// modeltool is a CLI utility for inspecting skeletal model assets and the
// XARC archives they ship in.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Faultbox/tlj-engine/internal/config"
	"github.com/Faultbox/tlj-engine/internal/dump"
	"github.com/Faultbox/tlj-engine/internal/engine/actor"
	"github.com/Faultbox/tlj-engine/internal/engine/model"
	"github.com/Faultbox/tlj-engine/internal/engine/picking"
	"github.com/Faultbox/tlj-engine/internal/export"
	"github.com/Faultbox/tlj-engine/pkg/math"
	"github.com/Faultbox/tlj-engine/pkg/xarc"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "bones":
		cmdBones(args)
	case "dump":
		cmdDump(args)
	case "pick":
		cmdPick(args)
	case "export":
		cmdExport(args)
	case "list", "ls":
		cmdList(args)
	case "extract", "x":
		cmdExtract(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`modeltool - skeletal model and XARC archive utility

Usage:
  modeltool <command> [options]

Model files may be given as a path or as archive.xarc:member.

Commands:
  info <model>                               Show header, counts and materials
  bones <model>                              Print the bone hierarchy with boxes
  dump [-full] <model>                       Dump the decoded model
  pick <model> ox oy oz dx dy dz [flags]     Cast a world ray at a placed model
       -x -y -z <float>  actor position, -facing <degrees>
  export [-boxes] <model> [out.glb|.gltf]    Export to glTF (default: export.output_dir)
  list <file.xarc> [pattern]                 List archive members
  extract <file.xarc> <name> [output_dir]    Extract member(s)

Examples:
  modeltool info xarc/april.xarc:april.cir
  modeltool pick april.cir 0 0 10 0 0 -1 -facing 270
  modeltool export april.cir april.glb
  modeltool extract april.xarc "*.cir" ./out`)
}

// toolConfig loads the shared config for defaults, falling back to the
// built-in values when the file is unusable.
func toolConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		return config.Default()
	}
	return cfg
}

func fail(format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}

// splitSource separates "archive.xarc:member" into its parts. Plain paths
// return an empty member.
func splitSource(arg string) (archive, member string) {
	i := strings.Index(strings.ToLower(arg), ".xarc:")
	if i < 0 {
		return arg, ""
	}
	return arg[:i+len(".xarc")], arg[i+len(".xarc:"):]
}

// readSource reads a model file from disk or from inside an archive.
func readSource(arg string) ([]byte, error) {
	path, member := splitSource(arg)
	if member == "" {
		return os.ReadFile(path)
	}

	a, err := xarc.Open(path)
	if err != nil {
		return nil, err
	}
	defer a.Close()
	return a.Read(member)
}

func loadModel(arg string) *model.Model {
	data, err := readSource(arg)
	if err != nil {
		fail("Error: %v", err)
	}
	m, err := model.Parse(data)
	if err != nil {
		fail("Error decoding %s: %v", arg, err)
	}
	return m
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fail("Usage: modeltool info <model>")
	}
	m := loadModel(args[0])

	fmt.Printf("Model:     %s\n", args[0])
	fmt.Printf("Extra:     %d\n", m.HeaderExtra())
	fmt.Printf("Scalar:    %g\n", m.HeaderScalar())
	fmt.Printf("Materials: %d\n", len(m.Materials()))
	fmt.Printf("Bones:     %d\n", len(m.Bones()))
	fmt.Printf("Meshes:    %d\n", len(m.Meshes()))
	fmt.Printf("Vertices:  %d\n", m.VertexCount())
	fmt.Printf("Triangles: %d\n", m.TriangleCount())
	fmt.Println()

	fmt.Println("Materials:")
	for i, mat := range m.Materials() {
		fmt.Printf("  %3d %-24s flags=%#x texture=%s color=(%.2f %.2f %.2f)\n",
			i, mat.Name, mat.Flags, mat.Texture, mat.R, mat.G, mat.B)
	}
	fmt.Println("Meshes:")
	for _, mesh := range m.Meshes() {
		fmt.Printf("  %-24s %d faces\n", mesh.Name, len(mesh.Faces))
	}
}

func cmdBones(args []string) {
	if len(args) < 1 {
		fail("Usage: modeltool bones <model>")
	}
	m := loadModel(args[0])

	var walk func(i, depth int)
	walk = func(i, depth int) {
		b := &m.Bones()[i]
		box := "empty"
		if b.BoundingBox.Valid {
			box = fmt.Sprintf("[%v .. %v]", b.BoundingBox.Min, b.BoundingBox.Max)
		}
		fmt.Printf("%s%d %s %s\n", strings.Repeat("  ", depth), i, b.Name, box)
		for _, c := range m.Children(i) {
			walk(c, depth+1)
		}
	}
	for _, root := range m.Roots() {
		walk(root, 0)
	}
}

func cmdDump(args []string) {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	full := fs.Bool("full", false, "Include mesh geometry")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fail("Usage: modeltool dump [-full] <model>")
	}
	m := loadModel(fs.Arg(0))
	if err := dump.Model(os.Stdout, fs.Arg(0), m, *full); err != nil {
		fail("Error: %v", err)
	}
}

func parseFloats(args []string) ([]float32, error) {
	out := make([]float32, len(args))
	for i, s := range args {
		v, err := strconv.ParseFloat(s, 32)
		if err != nil {
			return nil, fmt.Errorf("argument %d: %w", i+1, err)
		}
		out[i] = float32(v)
	}
	return out, nil
}

func cmdPick(args []string) {
	if len(args) < 7 {
		fail("Usage: modeltool pick <model> ox oy oz dx dy dz [-x X -y Y -z Z -facing DEG]")
	}

	fs := flag.NewFlagSet("pick", flag.ExitOnError)
	x := fs.Float64("x", 0, "Actor position X")
	y := fs.Float64("y", 0, "Actor position Y")
	z := fs.Float64("z", 0, "Actor position Z")
	facing := fs.Float64("facing", float64(toolConfig().Picking.DefaultFacing), "Actor facing in degrees")
	fs.Parse(args[7:])

	v, err := parseFloats(args[1:7])
	if err != nil {
		fail("Error: %v", err)
	}
	dir := math.Vec3{X: v[3], Y: v[4], Z: v[5]}
	if dir.Length() == 0 {
		fail("Error: ray direction must be nonzero")
	}

	a := actor.New(args[0], loadModel(args[0]))
	a.SetPlacement(math.Vec3{X: float32(*x), Y: float32(*y), Z: float32(*z)}, float32(*facing))

	ray := picking.NewRay(math.Vec3{X: v[0], Y: v[1], Z: v[2]}, dir)
	bone, dist, ok := a.PickBone(ray)
	if !ok {
		fmt.Println("miss")
		return
	}
	fmt.Printf("hit bone %d %s at distance %g\n", bone, a.Model().Bones()[bone].Name, dist)
}

func cmdExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	boxes := fs.Bool("boxes", false, "Include bone pick boxes as lines")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fail("Usage: modeltool export [-boxes] <model> [out.glb|out.gltf]")
	}
	m := loadModel(fs.Arg(0))

	out := fs.Arg(1)
	if out == "" {
		out = defaultExportPath(toolConfig().Export, fs.Arg(0))
	}
	if err := export.WriteFile(out, m, *boxes); err != nil {
		fail("Error exporting: %v", err)
	}
	fmt.Printf("Exported: %s\n", out)
}

// defaultExportPath names the export of a model source inside the configured
// output directory.
func defaultExportPath(cfg config.ExportConfig, source string) string {
	path, member := splitSource(source)
	if member != "" {
		path = member
	}
	return filepath.Join(cfg.OutputDir, export.FileName(path, cfg.Binary))
}

func cmdList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	limit := fs.Int("n", 0, "Limit output to N files (0 = all)")
	long := fs.Bool("l", false, "Show member sizes")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fail("Usage: modeltool list <file.xarc> [pattern]")
	}

	archive, err := xarc.Open(fs.Arg(0))
	if err != nil {
		fail("Error: %v", err)
	}
	defer archive.Close()

	pattern := ""
	if fs.NArg() > 1 {
		pattern = strings.ToLower(fs.Arg(1))
	}

	count := 0
	for _, e := range archive.Entries() {
		if pattern != "" && !matchName(pattern, e.Name) {
			continue
		}
		if *long {
			fmt.Printf("%10d  %s\n", e.Length, e.Name)
		} else {
			fmt.Println(e.Name)
		}
		count++
		if *limit > 0 && count >= *limit {
			break
		}
	}

	if pattern != "" {
		fmt.Fprintf(os.Stderr, "\n(%d files matched)\n", count)
	}
}

func matchName(pattern, name string) bool {
	lower := strings.ToLower(name)
	matched, _ := filepath.Match(pattern, filepath.Base(lower))
	return matched || strings.Contains(lower, pattern)
}

func cmdExtract(args []string) {
	fs := flag.NewFlagSet("extract", flag.ExitOnError)
	fs.Parse(args)

	if fs.NArg() < 2 {
		fail("Usage: modeltool extract <file.xarc> <name> [output_dir]")
	}

	name := fs.Arg(1)
	outputDir := "."
	if fs.NArg() > 2 {
		outputDir = fs.Arg(2)
	}

	archive, err := xarc.Open(fs.Arg(0))
	if err != nil {
		fail("Error: %v", err)
	}
	defer archive.Close()

	var names []string
	if strings.Contains(name, "*") {
		pattern := strings.ToLower(name)
		for _, n := range archive.List() {
			if ok, _ := filepath.Match(pattern, strings.ToLower(filepath.Base(n))); ok {
				names = append(names, n)
			}
		}
	} else {
		if !archive.Contains(name) {
			fail("File not found: %s", name)
		}
		names = []string{name}
	}

	extracted := 0
	for _, n := range names {
		data, err := archive.Read(n)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading %s: %v\n", n, err)
			continue
		}

		outputPath, err := outputPathFor(outputDir, n)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Skipping %s: %v\n", n, err)
			continue
		}
		if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
			fmt.Fprintf(os.Stderr, "Error creating directory: %v\n", err)
			continue
		}
		if err := os.WriteFile(outputPath, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing %s: %v\n", outputPath, err)
			continue
		}

		fmt.Printf("Extracted: %s (%d bytes)\n", outputPath, len(data))
		extracted++
	}

	if len(names) > 1 {
		fmt.Fprintf(os.Stderr, "\nExtracted %d files\n", extracted)
	}
}

// outputPathFor maps a member name under dir, refusing names that would
// escape it.
func outputPathFor(dir, member string) (string, error) {
	rel := filepath.FromSlash(strings.ReplaceAll(member, "\\", "/"))
	if !filepath.IsLocal(rel) {
		return "", fmt.Errorf("member name %q is not a relative path", member)
	}
	return filepath.Join(dir, rel), nil
}
