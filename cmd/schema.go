package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"reflect"
	"sort"
	"strings"

	"github.com/invopop/jsonschema"
	"github.com/raidenhub/phim/fshare"
	"github.com/raidenhub/phim/internal/httputil"
	"github.com/raidenhub/phim/media"
	"github.com/raidenhub/phim/stream"
	"github.com/raidenhub/phim/subtitle"
	"github.com/samber/lo"
	"github.com/spf13/cobra"
)

// schemaTypes are the values printed by --json and returned by the local API.
var schemaTypes = map[string]any{
	"items":     []*media.Item{},
	"detail":    &media.Detail{},
	"files":     []media.RemoteFile{},
	"stream":    &stream.Result{},
	"request":   &stream.Request{},
	"subtitles": []subtitle.Result{},
	"account":   &fshare.User{},
	"response":  &httputil.Response{},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}

var schemaCmd = &cobra.Command{
	Use:   "schema <type>",
	Short: "Print the JSON schema of an output type",
	Args:  cobra.ExactArgs(1),
	ValidArgsFunction: func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return lo.Keys(schemaTypes), cobra.ShellCompDirectiveNoFileComp
	},
	Run: func(cmd *cobra.Command, args []string) {
		v, ok := schemaTypes[args[0]]
		if !ok {
			names := lo.Keys(schemaTypes)
			sort.Strings(names)
			handleErr(fmt.Errorf("unknown type %s, expected one of %s", args[0], strings.Join(names, ", ")))
		}

		reflector := new(jsonschema.Reflector)
		reflector.Anonymous = true
		reflector.Namer = func(t reflect.Type) string {
			switch strings.ToLower(t.Name()) {
			case "result", "request", "user", "response":
				return filepath.Base(t.PkgPath()) + "." + t.Name()
			}
			return t.Name()
		}

		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		handleErr(encoder.Encode(reflector.Reflect(v)))
	},
}
