// Package toolbuiltin carries the locally executed tools shipped with the
// binary. They are read-only and scoped to a workspace root.
package toolbuiltin

import "github.com/nimec77/tandem/pkg/tool"

// Register adds every builtin tool to r, scoped to root.
func Register(r *tool.Registry, root string) error {
	for _, t := range []tool.Tool{
		NewListDirTool(root),
		NewReadFileTool(root),
		NewClockTool(),
	} {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}
