package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/Gopher0727/Ideario/internal/apply"
	"github.com/Gopher0727/Ideario/internal/engine"
	"github.com/Gopher0727/Ideario/internal/hierarchy"
	"github.com/Gopher0727/Ideario/internal/intent"
	"github.com/Gopher0727/Ideario/internal/journal"
	"github.com/Gopher0727/Ideario/internal/metrics"
	"github.com/Gopher0727/Ideario/internal/summary"
)

var (
	promptColor = color.New(color.FgGreen, color.Bold)
	groupColor  = color.New(color.FgCyan, color.Bold)
	subColor    = color.New(color.FgCyan)
	okColor     = color.New(color.FgGreen)
	warnColor   = color.New(color.FgYellow)
	delColor    = color.New(color.FgRed)
	remColor    = color.New(color.FgMagenta)
	dimColor    = color.New(color.Faint)
)

// console is the interactive loop: plain lines are notes, lines starting
// with ':' are commands.
type console struct {
	engine    *engine.Engine
	store     *hierarchy.Store
	refresher *summary.Refresher
	journal   journal.Journal
	metrics   *metrics.Metrics
}

func (c *console) run(ctx context.Context) {
	fmt.Println("Ideario: apunta ideas y yo las ordeno. Escribe :help para ver los comandos.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		promptColor.Print("ideario> ")
		if !scanner.Scan() {
			fmt.Println()
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, ":") {
			if !c.command(ctx, line) {
				return
			}
			continue
		}
		c.printResults(c.engine.ProcessNote(ctx, line, time.Now()))
	}
}

// command handles one ':' line and reports whether the loop continues.
func (c *console) command(ctx context.Context, line string) bool {
	switch strings.ToLower(strings.Fields(line)[0]) {
	case ":quit", ":q", ":exit":
		return false
	case ":help":
		c.printHelp()
	case ":tree":
		c.printTree()
	case ":summaries":
		c.printSummaries(ctx)
	case ":reminders":
		c.printReminders()
	case ":history":
		c.printHistory(ctx)
	case ":metrics":
		if err := c.metrics.Dump(os.Stdout); err != nil {
			warnColor.Printf("no se pudieron volcar las métricas: %v\n", err)
		}
	default:
		warnColor.Printf("comando desconocido: %s (prueba :help)\n", line)
	}
	return true
}

func (c *console) printHelp() {
	fmt.Println("Cualquier línea sin ':' se procesa como nota. Comandos:")
	fmt.Println("  :tree       muestra la jerarquía de grupos e ideas")
	fmt.Println("  :summaries  genera y muestra los resúmenes pendientes")
	fmt.Println("  :reminders  lista los recordatorios")
	fmt.Println("  :history    últimas notas procesadas")
	fmt.Println("  :metrics    contadores internos")
	fmt.Println("  :quit       salir")
}

func (c *console) printResults(results []apply.ActionResult) {
	for _, r := range results {
		where := r.Group
		if r.Subgroup != "" {
			where += " / " + r.Subgroup
		}
		switch r.Kind {
		case intent.KindCreateIdea.String():
			tag := ""
			if r.NewGroup {
				tag += " (grupo nuevo)"
			}
			if r.NewSubgroup {
				tag += " (subgrupo nuevo)"
			}
			if r.CreatedIdea == "" {
				okColor.Printf("+ %s preparado%s\n", where, tag)
			} else {
				okColor.Printf("+ %q -> %s%s\n", r.CreatedIdea, where, tag)
			}
		case intent.KindRenameGroup.String(), intent.KindRenameSubgroup.String():
			okColor.Printf("+ renombrado: %s\n", where)
		case intent.KindDeleteGroup.String():
			delColor.Printf("- grupo %s eliminado (%d ideas)\n", where, r.DeletedCount)
		case intent.KindDeleteSubgroup.String():
			delColor.Printf("- subgrupo %s eliminado (%d ideas)\n", where, r.DeletedCount)
		case intent.KindDeleteIdea.String():
			if where == "" {
				where = "toda la jerarquía"
			}
			delColor.Printf("- %d idea(s) eliminadas de %s\n", r.DeletedCount, where)
		case intent.KindSetReminder.String():
			remColor.Printf("* recordatorio: %s\n", r.FireAt.Local().Format("Mon 02 Jan 15:04"))
		case intent.KindIgnore.String():
			warnColor.Printf("~ ignorado: %s\n", r.Reason)
		}
	}
}

func (c *console) printTree() {
	snap := c.store.Snapshot()
	if len(snap) == 0 {
		dimColor.Println("(sin grupos todavía)")
		return
	}
	for _, g := range snap {
		groupColor.Print(g.Name)
		dimColor.Printf("  (%d ideas)\n", countIdeas(g))
		if g.Summary != nil {
			dimColor.Printf("  » %s\n", g.Summary.Text)
		}
		for _, idea := range g.Ideas {
			fmt.Printf("  · %s\n", idea.Text)
		}
		for _, sg := range g.Subgroups {
			subColor.Printf("  %s\n", sg.Name)
			if sg.Summary != nil {
				dimColor.Printf("    » %s\n", sg.Summary.Text)
			}
			for _, idea := range sg.Ideas {
				fmt.Printf("    · %s\n", idea.Text)
			}
		}
	}
}

func countIdeas(g hierarchy.Group) int {
	n := len(g.Ideas)
	for _, sg := range g.Subgroups {
		n += len(sg.Ideas)
	}
	return n
}

func (c *console) printSummaries(ctx context.Context) {
	installed, err := c.refresher.RefreshAll(ctx)
	if err != nil {
		warnColor.Printf("algunos resúmenes fallaron: %v\n", err)
	}
	c.metrics.SummariesInstalled(int64(installed))

	any := false
	for _, g := range c.store.Snapshot() {
		if g.Summary != nil {
			groupColor.Printf("%s: ", g.Name)
			fmt.Println(g.Summary.Text)
			any = true
		}
		for _, sg := range g.Subgroups {
			if sg.Summary != nil {
				subColor.Printf("%s / %s: ", g.Name, sg.Name)
				fmt.Println(sg.Summary.Text)
				any = true
			}
		}
	}
	if !any {
		dimColor.Println("(nada que resumir)")
	}
}

func (c *console) printReminders() {
	rems := c.store.Reminders()
	if len(rems) == 0 {
		dimColor.Println("(sin recordatorios)")
		return
	}
	for _, r := range rems {
		when := r.FireAt.Local().Format("Mon 02 Jan 15:04")
		if r.Sent {
			dimColor.Printf("* %s  %s (enviado)\n", when, r.Message)
		} else {
			remColor.Printf("* %s  %s\n", when, r.Message)
		}
	}
}

func (c *console) printHistory(ctx context.Context) {
	if c.journal == nil {
		dimColor.Println("(historial desactivado)")
		return
	}
	entries, err := c.journal.Recent(ctx, 10)
	if err != nil {
		warnColor.Printf("no se pudo leer el historial: %v\n", err)
		return
	}
	if len(entries) == 0 {
		dimColor.Println("(historial vacío)")
		return
	}
	for _, e := range entries {
		kinds := make([]string, len(e.Results))
		for i, r := range e.Results {
			kinds[i] = r.Kind
		}
		dimColor.Printf("%s  ", e.CreatedAt.Local().Format("02/01 15:04"))
		fmt.Printf("%s  ", e.Note)
		dimColor.Printf("[%s]\n", strings.Join(kinds, ", "))
	}
}

// printReminderDue renders a due reminder pushed by the scheduler. It
// runs on a worker goroutine, so it may interleave with the prompt.
func printReminderDue(r hierarchy.Reminder) {
	fmt.Println()
	remColor.Printf("* RECORDATORIO: %s\n", r.Message)
}
