// navmonitor is a terminal dashboard for a running navsimd: it polls the
// stats endpoint and tails the event websocket, rendering chunk states, the
// per-mode agent histogram, stage timings and a rolling event log.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"sort"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/gorilla/websocket"

	"navcore/internal/eventsvc"
	"navcore/internal/simrunner"
)

const eventLogSize = 12

type monitor struct {
	addr string

	mu     sync.Mutex
	stats  simrunner.Stats
	events []eventsvc.Event
	err    error
}

func main() {
	addr := flag.String("addr", "localhost:8077", "navsimd host:port")
	refresh := flag.Duration("refresh", 500*time.Millisecond, "stats poll interval")
	flag.Parse()

	m := &monitor{addr: *addr}
	go m.pollStats(*refresh)
	go m.tailEvents()

	screen, err := tcell.NewScreen()
	if err != nil {
		fmt.Fprintln(os.Stderr, "screen:", err)
		os.Exit(1)
	}
	if err := screen.Init(); err != nil {
		fmt.Fprintln(os.Stderr, "screen init:", err)
		os.Exit(1)
	}
	defer screen.Fini()

	quit := make(chan struct{})
	go func() {
		for {
			switch ev := screen.PollEvent().(type) {
			case *tcell.EventKey:
				if ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q' {
					close(quit)
					return
				}
			case *tcell.EventResize:
				screen.Sync()
			}
		}
	}()

	ticker := time.NewTicker(*refresh)
	defer ticker.Stop()
	for {
		select {
		case <-quit:
			return
		case <-ticker.C:
			m.draw(screen)
		}
	}
}

func (m *monitor) pollStats(interval time.Duration) {
	client := &http.Client{Timeout: interval}
	for {
		resp, err := client.Get("http://" + m.addr + "/stats")
		if err == nil {
			var st simrunner.Stats
			err = json.NewDecoder(resp.Body).Decode(&st)
			resp.Body.Close()
			if err == nil {
				m.mu.Lock()
				m.stats, m.err = st, nil
				m.mu.Unlock()
			}
		}
		if err != nil {
			m.mu.Lock()
			m.err = err
			m.mu.Unlock()
		}
		time.Sleep(interval)
	}
}

func (m *monitor) tailEvents() {
	u := url.URL{Scheme: "ws", Host: m.addr, Path: "/events"}
	for {
		conn, _, err := websocket.DefaultDialer.Dial(u.String(), nil)
		if err != nil {
			time.Sleep(2 * time.Second)
			continue
		}
		for {
			var batch []eventsvc.Event
			if err := conn.ReadJSON(&batch); err != nil {
				conn.Close()
				break
			}
			m.mu.Lock()
			m.events = append(m.events, batch...)
			if n := len(m.events); n > eventLogSize {
				m.events = m.events[n-eventLogSize:]
			}
			m.mu.Unlock()
		}
	}
}

var (
	styleTitle  = tcell.StyleDefault.Foreground(tcell.ColorYellow).Bold(true)
	styleHeader = tcell.StyleDefault.Foreground(tcell.ColorAqua)
	styleText   = tcell.StyleDefault
	styleBar    = tcell.StyleDefault.Foreground(tcell.ColorGreen)
	styleErr    = tcell.StyleDefault.Foreground(tcell.ColorRed)
)

func (m *monitor) draw(screen tcell.Screen) {
	m.mu.Lock()
	st := m.stats
	events := append([]eventsvc.Event(nil), m.events...)
	pollErr := m.err
	m.mu.Unlock()

	screen.Clear()
	row := 0

	puts(screen, 0, row, styleTitle, fmt.Sprintf("navmonitor - %s", m.addr))
	row++
	if pollErr != nil {
		puts(screen, 0, row, styleErr, "stats: "+pollErr.Error())
		row += 2
	} else {
		puts(screen, 0, row, styleText, fmt.Sprintf("frame %d   t=%.1fs   agents %d", st.Frame, st.Now, st.Agents))
		row += 2
	}

	puts(screen, 0, row, styleHeader, "chunks")
	row++
	for _, state := range []string{"Active", "Ghost", "Unloaded"} {
		puts(screen, 2, row, styleText, fmt.Sprintf("%-9s %4d", state, st.Chunks[state]))
		row++
	}
	row++

	puts(screen, 0, row, styleHeader, "agent modes")
	row++
	for _, mode := range []string{"Idle", "AStar", "FlowField", "MacroOnly"} {
		count := st.AgentModes[mode]
		puts(screen, 2, row, styleText, fmt.Sprintf("%-10s %4d ", mode, count))
		puts(screen, 18, row, styleBar, bar(count, st.Agents, 30))
		row++
	}
	row++

	puts(screen, 0, row, styleHeader, "stage timings")
	row++
	for _, line := range topStages(st.StageMillis, 6) {
		puts(screen, 2, row, styleText, line)
		row++
	}
	row++

	puts(screen, 0, row, styleHeader, "counters")
	row++
	keys := make([]string, 0, len(st.Counters))
	for k := range st.Counters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		puts(screen, 2, row, styleText, fmt.Sprintf("%-13s %8d", k, st.Counters[k]))
		row++
	}
	row++

	puts(screen, 0, row, styleHeader, "events")
	row++
	for _, e := range events {
		line := fmt.Sprintf("[%6d] %-14s entity %d", e.Frame, e.Kind, e.Entity)
		if e.Kind == "attack_hit" {
			line = fmt.Sprintf("[%6d] %-14s %d -> %d (%d dmg)", e.Frame, e.Kind, e.Entity, e.Target, e.Damage)
		}
		puts(screen, 2, row, styleText, line)
		row++
	}

	screen.Show()
}

func puts(screen tcell.Screen, x, y int, style tcell.Style, s string) {
	for i, r := range s {
		screen.SetContent(x+i, y, r, nil, style)
	}
}

func bar(count, total, width int) string {
	if total <= 0 {
		return ""
	}
	n := count * width / total
	out := make([]rune, n)
	for i := range out {
		out[i] = '█'
	}
	return string(out)
}

func topStages(millis map[string]float64, n int) []string {
	type pair struct {
		name string
		ms   float64
	}
	list := make([]pair, 0, len(millis))
	for k, v := range millis {
		list = append(list, pair{k, v})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ms > list[j].ms })
	if n > len(list) {
		n = len(list)
	}
	out := make([]string, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, fmt.Sprintf("%-28s %6.2fms", list[i].name, list[i].ms))
	}
	return out
}
