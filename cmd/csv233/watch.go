package main

import (
	"fmt"
	"time"

	"github.com/neko233-com/csv233-go/pkg/csv233"
	"github.com/neko233-com/csv233-go/pkg/csv233/dto"
	"github.com/neko233-com/csv233-go/pkg/csv233/watch"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newWatchCmd(v *viper.Viper) *cobra.Command {
	var delay time.Duration
	cmd := &cobra.Command{
		Use:   "watch FILE...",
		Short: "监听表格文件，变化后重新读取并输出 JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := loadDescription(v)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			load := func(path string) (*dto.TableDto, error) {
				return readTable(desc, path)
			}
			onReload := func(path string, t *dto.TableDto, err error) {
				if err != nil {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", path, err)
					return
				}
				_ = printJSON(out, t)
			}

			w, err := watch.New[*dto.TableDto](load, onReload, watch.WithBatchDelay(delay))
			if err != nil {
				return err
			}
			defer w.Close()

			for _, path := range args {
				t, err := load(path)
				onReload(path, t, err)
				if err := w.Add(path); err != nil {
					return err
				}
			}
			if err := w.Start(); err != nil {
				return err
			}

			<-cmd.Context().Done()
			csv233.GetLogger().Info("停止监听")
			return nil
		},
	}
	cmd.Flags().DurationVar(&delay, "batch-delay", watch.DefaultBatchDelay, "合并变更事件的等待时间")
	return cmd
}
