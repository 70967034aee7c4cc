package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/neko233-com/csv233-go/pkg/csv233"
	"github.com/neko233-com/csv233-go/pkg/csv233/dto"
	"github.com/neko233-com/csv233-go/pkg/csv233/excel"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"
)

func newTableCmd(v *viper.Viper) *cobra.Command {
	var parallel int
	cmd := &cobra.Command{
		Use:   "table FILE...",
		Short: "并行读取表格并输出 JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := loadDescription(v)
			if err != nil {
				return err
			}

			if parallel < 1 {
				parallel = 1
			}
			tables := make([]*dto.TableDto, len(args))
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(parallel)
			for i, path := range args {
				i, path := i, path
				g.Go(func() error {
					if err := ctx.Err(); err != nil {
						return err
					}
					t, err := readTable(desc, path)
					if err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}
					tables[i] = t
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			return printJSON(cmd.OutOrStdout(), tables)
		},
	}
	cmd.Flags().IntVar(&parallel, "parallel", runtime.NumCPU(), "并行读取的文件数")
	return cmd
}

func isExcel(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}

// readTable 按扩展名选择 CSV 或 Excel
func readTable(desc *csv233.FileDescription, path string) (*dto.TableDto, error) {
	if isExcel(path) {
		return excel.ReadTableFile(desc, path)
	}
	return csv233.ReadTableFile(desc, path)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
