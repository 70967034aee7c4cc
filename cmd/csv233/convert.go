package main

import (
	"fmt"
	"os"

	"github.com/neko233-com/csv233-go/pkg/csv233"
	"github.com/neko233-com/csv233-go/pkg/csv233/dto"
	"github.com/neko233-com/csv233-go/pkg/csv233/excel"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newConvertCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "convert SRC DST",
		Short: "在 CSV 和 xlsx 之间转换，格式由扩展名决定",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := loadDescription(v)
			if err != nil {
				return err
			}
			table, err := readTable(desc, args[0])
			if err != nil {
				return err
			}
			if err := writeTable(desc, args[1], table); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s -> %s (%d rows)\n", args[0], args[1], len(table.DataList))
			return nil
		},
	}
}

func writeTable(desc *csv233.FileDescription, path string, table *dto.TableDto) error {
	if isExcel(path) {
		return excel.WriteTableFile(desc, path, table)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := csv233.WriteTable(desc, f, table); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
