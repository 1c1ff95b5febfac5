// guidconv converts between UUIDs and 22-character IFC GUIDs and checks the
// identities in a model file.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/google/uuid"

	"github.com/ifcquery/ifcview/internal/data"
	"github.com/ifcquery/ifcview/internal/ifcguid"
)

const usage = `Usage:
  guidconv new [count]          generate IFC GUIDs
  guidconv encode <uuid>...     UUID -> IFC GUID
  guidconv decode <guid>...     IFC GUID -> UUID
  guidconv check <model.yaml>   report missing, invalid and duplicate GUIDs`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(1)
	}
	if err := run(os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd string, args []string) error {
	switch cmd {
	case "new":
		n := 1
		if len(args) > 0 {
			v, err := strconv.Atoi(args[0])
			if err != nil || v < 1 {
				return fmt.Errorf("invalid count %q", args[0])
			}
			n = v
		}
		for i := 0; i < n; i++ {
			fmt.Println(ifcguid.New())
		}
	case "encode":
		for _, a := range args {
			u, err := uuid.Parse(a)
			if err != nil {
				return fmt.Errorf("%s: %w", a, err)
			}
			fmt.Printf("%s  %s\n", u, ifcguid.FromUUID(u))
		}
	case "decode":
		for _, a := range args {
			u, err := ifcguid.ToUUID(a)
			if err != nil {
				return fmt.Errorf("%s: %w", a, err)
			}
			fmt.Printf("%s  %s\n", a, u)
		}
	case "check":
		if len(args) != 1 {
			return fmt.Errorf("check takes one model file")
		}
		return check(args[0])
	default:
		return fmt.Errorf("unknown command %q\n%s", cmd, usage)
	}
	return nil
}

func check(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	m, err := data.ReadModel(f)
	if err != nil {
		return err
	}

	seen := make(map[string]int)
	var total, missing, invalid, dup int
	var walk func(defs []data.EntityDef)
	walk = func(defs []data.EntityDef) {
		for _, d := range defs {
			total++
			switch {
			case d.GUID == "":
				missing++
				fmt.Printf("  #%d %s: no guid\n", d.Tag, d.Class)
			case !ifcguid.Valid(d.GUID):
				invalid++
				fmt.Printf("  #%d %s: invalid guid %q\n", d.Tag, d.Class, d.GUID)
			default:
				if prev, ok := seen[d.GUID]; ok {
					dup++
					fmt.Printf("  #%d %s: guid %s already used by #%d\n", d.Tag, d.Class, d.GUID, prev)
				} else {
					seen[d.GUID] = d.Tag
				}
			}
			walk(d.Children)
		}
	}
	walk(m.Entities)

	fmt.Printf("%s: %d entities, %d without guid, %d invalid, %d duplicate\n", path, total, missing, invalid, dup)
	if invalid > 0 || dup > 0 {
		return fmt.Errorf("model has %d invalid and %d duplicate guids", invalid, dup)
	}
	return nil
}
