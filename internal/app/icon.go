package app

import (
	"fmt"

	"github.com/spf13/cobra"
)

var iconCmd = &cobra.Command{
	Use:   "icon <name>",
	Short: "Resolve an icon name to a file",
	Long: `Print the file an icon name resolves to, searching pixmaps and then the
icon themes largest size first. A name that matches no file is printed
unchanged.`,
	Example: `  applaunch icon firefox
  applaunch icon org.gnome.Nautilus`,
	Args: cobra.ExactArgs(1),
	RunE: runIcon,
}

func runIcon(cmd *cobra.Command, args []string) error {
	env, err := newEnvironment()
	if err != nil {
		return err
	}
	fmt.Println(env.icons.Resolve(args[0]))
	return nil
}
