package main

import (
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"pexipmon/internal/buildinfo"
	"pexipmon/internal/command"
	"pexipmon/internal/domain"
)

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "输出版本信息",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", buildinfo.Version(), buildinfo.BuildDate())
			return err
		},
	}
}

func newRefreshCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "refresh",
		Short: "拉取一次节点、会议和参会者并输出节点列表",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			res, err := c.svc.RefreshNow(cmd.Context())
			if err != nil {
				return err
			}
			return c.print(cmd.OutOrStdout(), res.Nodes, func(w io.Writer) error {
				fmt.Fprintf(w, "cycle %s: %d nodes, %d conferences, %d participants\n",
					res.CycleID, len(res.Nodes), len(res.Conferences), len(res.Participants))
				for _, n := range res.Nodes {
					fmt.Fprintf(w, "%s\t%s\t%s\n", n.ID, n.Name, n.Properties[domain.PropConfigAddress])
				}
				return nil
			})
		},
	}
}

func newStatsCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "输出管理节点统计",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			stats, err := c.svc.Statistics(cmd.Context())
			if err != nil {
				return err
			}
			return c.print(cmd.OutOrStdout(), stats, func(w io.Writer) error {
				writeSorted(w, stats.Statistics)
				writeSorted(w, stats.DynamicStatistics)
				return nil
			})
		},
	}
}

func newExportCmd(c *cli) *cobra.Command {
	export := &cobra.Command{
		Use:   "export",
		Short: "生成报表并通过邮件发送",
	}
	var daysBack int
	historical := &cobra.Command{
		Use:   "historical",
		Short: "导出最近若干天结束的会议和参会者",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("days-back") {
				if err := c.svc.SetDaysBack(cmd.Context(), daysBack); err != nil {
					return err
				}
			}
			return c.run(cmd, command.ExportHistorical{})
		},
	}
	historical.Flags().IntVar(&daysBack, "days-back", 1, "回溯天数")

	export.AddCommand(
		&cobra.Command{
			Use:   "licensing",
			Short: "导出 licensing 报表",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.run(cmd, command.ExportLicensing{})
			},
		},
		historical,
		&cobra.Command{
			Use:   "aggregate",
			Short: "导出当天、本月和上月的汇总统计",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return c.run(cmd, command.ExportAggregate{})
			},
		},
		&cobra.Command{
			Use:   "participants <conference>",
			Short: "导出某个会议当前的参会者",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := c.warm(cmd.Context()); err != nil {
					return err
				}
				return c.run(cmd, command.ExportParticipants{Conference: args[0]})
			},
		},
	)
	return export
}

func newDisconnectCmd(c *cli) *cobra.Command {
	disconnect := &cobra.Command{
		Use:   "disconnect",
		Short: "按名称断开会议或参会者",
	}
	disconnect.AddCommand(
		&cobra.Command{
			Use:   "conference <name>",
			Short: "断开会议",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := c.warm(cmd.Context()); err != nil {
					return err
				}
				return c.run(cmd, command.DisconnectConference{Name: args[0]})
			},
		},
		&cobra.Command{
			Use:   "participant <display-name>",
			Short: "断开参会者",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := c.warm(cmd.Context()); err != nil {
					return err
				}
				return c.run(cmd, command.DisconnectParticipant{Name: args[0]})
			},
		},
	)
	return disconnect
}

func newDaysBackCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "days-back <n>",
		Short: "校验并输出历史报表回溯天数",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			days, err := command.ParseDays(args[0])
			if err != nil {
				return err
			}
			if err := c.svc.SetDaysBack(cmd.Context(), days); err != nil {
				return err
			}
			return c.print(cmd.OutOrStdout(), c.svc.Settings(), func(w io.Writer) error {
				_, err := fmt.Fprintln(w, "days_back="+strconv.Itoa(c.svc.Settings().DaysBack))
				return err
			})
		},
	}
}

func (c *cli) run(cmd *cobra.Command, op command.Command) error {
	if err := c.svc.Execute(cmd.Context(), op); err != nil {
		return err
	}
	return c.print(cmd.OutOrStdout(), map[string]string{"status": "ok", "property": op.Property()}, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "%s: ok\n", op.Property())
		return err
	})
}

func writeSorted(w io.Writer, m map[string]string) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s=%s\n", k, m[k])
	}
}
