package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/shopspring/decimal"

	"commodity_go/internal/app"
	"commodity_go/internal/domain"
	"commodity_go/internal/event"
)

func main() {
	// 1. System Bootstrapping
	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(); err != nil {
		slog.Error("❌ Bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	defer bootstrap.Shutdown()

	// 2. Graceful Shutdown Context
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Event Bus: single consumer renders core events to the terminal
	bootstrap.Bus.Subscribe(render)
	bootstrap.Bus.Start(ctx)

	// 4. Cached catalog first, then restore the session
	if err := bootstrap.Catalog.LoadCached(); err != nil {
		slog.Warn("cached catalog load failed", slog.Any("error", err))
	}
	if err := bootstrap.Session.Bootstrap(ctx); err != nil {
		slog.Warn("session restore failed", slog.Any("error", err))
	}

	slog.InfoContext(ctx, "✨ Commodity Go ready. Type 'help' for commands.")

	// 5. Command Loop
	go repl(ctx, bootstrap, stop)

	<-ctx.Done()
	slog.Info("👋 Shutting down gracefully...")
}

func render(ev event.Event) {
	renderTo(os.Stdout, ev)
}

func renderTo(w io.Writer, ev event.Event) {
	switch e := ev.(type) {
	case event.Notice:
		mark := "✔"
		if e.Level == event.LevelError {
			mark = "✖"
		}
		fmt.Fprintf(w, "%s %s\n", mark, e.Message)
	case event.SessionUpdate:
		if e.CustomerName != "" {
			fmt.Fprintf(w, "· session: %s (%s)\n", e.State, e.CustomerName)
		} else {
			fmt.Fprintf(w, "· session: %s\n", e.State)
		}
	case event.BookUpdate:
		if e.Book == nil {
			fmt.Fprintln(w, "· order book cleared")
			return
		}
		fmt.Fprintf(w, "· book #%d  bids=%d asks=%d", e.CommodityID, len(e.Book.Bids), len(e.Book.Asks))
		if bid, ok := e.Book.BestBid(); ok {
			fmt.Fprintf(w, "  best bid %s x %s", bid.Price, bid.Quantity)
		}
		if ask, ok := e.Book.BestAsk(); ok {
			fmt.Fprintf(w, "  best ask %s x %s", ask.Price, ask.Quantity)
		}
		fmt.Fprintln(w)
	case event.CatalogUpdate:
		fmt.Fprintf(w, "· %d commodities available\n", len(e.Commodities))
	case event.OrdersUpdate:
		fmt.Fprintf(w, "· %d orders\n", len(e.Rows))
		for _, row := range e.Rows {
			note := ""
			if row.IsCancellable() {
				note = "  (cancellable)"
			}
			fmt.Fprintf(w, "    #%-4d %-4s %-8s %s x %s (filled %s) [%s]%s\n",
				row.ID, row.Type, row.Symbol, row.Price, row.Quantity, row.FilledQuantity, row.Status, note)
		}
	case event.TradesUpdate:
		fmt.Fprintf(w, "· %d trades\n", len(e.Trades))
		for _, t := range e.Trades {
			fmt.Fprintf(w, "    #%-4d order %d vs %d  %s x %s  %s\n",
				t.ID, t.OrderID, t.CounterpartyOrderID, t.Price, t.Quantity, t.ExecutedAt.Format("15:04:05"))
		}
	}
}

func repl(ctx context.Context, b *app.Bootstrap, stop context.CancelFunc) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if !dispatch(ctx, b, fields, stop) {
			return
		}
	}
}

// dispatch runs one command; it returns false when the loop should end.
func dispatch(ctx context.Context, b *app.Bootstrap, args []string, stop context.CancelFunc) bool {
	cmd, rest := args[0], args[1:]

	switch cmd {
	case "help":
		printHelp()

	case "login":
		if len(rest) != 2 {
			fmt.Println("usage: login <email> <password>")
			return true
		}
		_ = b.Session.Login(ctx, rest[0], rest[1])

	case "register":
		if len(rest) != 4 {
			fmt.Println("usage: register <name> <email> <password> <confirm>")
			return true
		}
		_ = b.Session.Register(ctx, rest[0], rest[1], rest[2], rest[3])

	case "commodities":
		for _, c := range b.Catalog.All() {
			marker := "  "
			if c.ID == b.Poller.Selected() {
				marker = "> "
			}
			fmt.Printf("%s#%-4d %-8s %s\n", marker, c.ID, c.Symbol, c.Name)
		}

	case "select":
		id, err := parseID(rest)
		if err != nil {
			fmt.Println("usage: select <commodity-id>")
			return true
		}
		b.Poller.Select(ctx, id)

	case "book":
		if snap := b.Poller.Snapshot(); snap != nil {
			printBook(snap)
		} else {
			fmt.Println("no instrument selected")
		}

	case "buy", "sell":
		if len(rest) != 2 {
			fmt.Printf("usage: %s <price> <quantity>\n", cmd)
			return true
		}
		price, perr := decimal.NewFromString(rest[0])
		quantity, qerr := decimal.NewFromString(rest[1])
		if perr != nil || qerr != nil {
			fmt.Println("price and quantity must be numeric")
			return true
		}
		_, _ = b.Orders.Submit(ctx, cmd, price, quantity)

	case "orders":
		_ = b.Orders.Refresh(ctx)

	case "cancel":
		id, err := parseID(rest)
		if err != nil {
			fmt.Println("usage: cancel <order-id>")
			return true
		}
		_ = b.Orders.Cancel(ctx, id)

	case "trades":
		_, _ = b.Orders.RefreshTrades(ctx)

	case "newc":
		if len(rest) < 2 {
			fmt.Println("usage: newc <name> <symbol> [description...]")
			return true
		}
		_, _ = b.Catalog.Create(ctx, rest[0], rest[1], strings.Join(rest[2:], " "))

	case "whoami":
		if cust := b.Session.Customer(); cust != nil {
			fmt.Printf("%s <%s>\n", cust.Name, cust.Email)
		} else {
			fmt.Println("not logged in")
		}

	case "logout":
		b.Session.Logout()

	case "quit", "exit":
		stop()
		return false

	default:
		fmt.Printf("unknown command %q, type 'help'\n", cmd)
	}
	return true
}

func parseID(rest []string) (int64, error) {
	if len(rest) != 1 {
		return 0, fmt.Errorf("expected one argument")
	}
	return strconv.ParseInt(rest[0], 10, 64)
}

func printBook(snap *domain.OrderBookSnapshot) {
	fmt.Printf("order book for commodity #%d\n", snap.CommodityID)
	fmt.Println("  asks:")
	for i := len(snap.Asks) - 1; i >= 0; i-- {
		fmt.Printf("    %12s x %s\n", snap.Asks[i].Price, snap.Asks[i].Quantity)
	}
	fmt.Println("  bids:")
	for _, lvl := range snap.Bids {
		fmt.Printf("    %12s x %s\n", lvl.Price, lvl.Quantity)
	}
	if spread := snap.Spread(); spread != nil {
		fmt.Printf("  spread: %s\n", spread)
	}
}

func printHelp() {
	fmt.Println(`commands:
  login <email> <password>                  authenticate
  register <name> <email> <pw> <confirm>    create an account and log in
  logout                                    end the session
  whoami                                    show the authenticated customer
  commodities                               list instruments (> marks selected)
  select <id>                               poll the order book of an instrument
  book                                      print the latest order book snapshot
  buy  <price> <quantity>                   place a buy order
  sell <price> <quantity>                   place a sell order
  orders                                    refresh and list your orders
  cancel <id>                               cancel an open order
  trades                                    refresh and list your trades
  newc <name> <symbol> [description...]     create a commodity
  quit                                      exit`)
}
