package main

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/ByLCY/writemate/store"
)

func newPresetCommand() *cobra.Command {
	var dbPath string
	cmd := &cobra.Command{
		Use:   "preset",
		Short: "管理最近保存的设置（最多 3 笔）",
	}
	cmd.PersistentFlags().StringVar(&dbPath, "db", "", "设置数据库路径（默认 ~/.cache/writemate.db）")

	cmd.AddCommand(&cobra.Command{
		Use:   "save",
		Short: "保存当前设置",
		Args:  cobra.NoArgs,
		RunE: withStore(&dbPath, func(ctx context.Context, st *store.Store, w io.Writer, _ []string) error {
			p, err := st.SavePreset(ctx, time.Now())
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s  %s\n", p.ID, p.Label)
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "列出已保存的设置",
		Args:  cobra.NoArgs,
		RunE: withStore(&dbPath, func(_ context.Context, st *store.Store, w io.Writer, _ []string) error {
			printPresets(w, st.History())
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "apply <id>",
		Short: "套用一笔设置",
		Args:  cobra.ExactArgs(1),
		RunE: withStore(&dbPath, func(ctx context.Context, st *store.Store, w io.Writer, args []string) error {
			ok, err := st.ApplyPreset(ctx, args[0])
			if err != nil {
				return err
			}
			if !ok {
				return fmt.Errorf("找不到设置 %s", args[0])
			}
			fmt.Fprintf(w, "已套用 %s\n", args[0])
			return nil
		}),
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "清除全部已保存的设置",
		Args:  cobra.NoArgs,
		RunE: withStore(&dbPath, func(ctx context.Context, st *store.Store, _ io.Writer, _ []string) error {
			return st.ClearPresets(ctx)
		}),
	})
	return cmd
}

type storeFunc func(ctx context.Context, st *store.Store, w io.Writer, args []string) error

// withStore 打开 dbPath 指向的设置库，执行 fn 后关闭。
func withStore(dbPath *string, fn storeFunc) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		backend, err := store.OpenSQLite(*dbPath)
		if err != nil {
			return err
		}
		st, err := store.Open(cmd.Context(), backend)
		if err != nil {
			backend.Close()
			return err
		}
		defer st.Close()
		return fn(cmd.Context(), st, cmd.OutOrStdout(), args)
	}
}

func printPresets(w io.Writer, history []store.Preset) {
	if len(history) == 0 {
		fmt.Fprintln(w, "尚无保存的设置")
		return
	}
	t := newTable("ID", "名称", "模板", "字型", "字号", "格线", "范字", "透明度")
	for _, p := range history {
		t.Row(append([]string{p.ID, p.Label}, settingsRow(p.Snapshot)...)...)
	}
	fmt.Fprintln(w, t)
}
