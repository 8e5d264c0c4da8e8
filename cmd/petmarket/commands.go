package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"text/tabwriter"

	"pet-market/internal/service"
)

func sortedCommands() []string {
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func table() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
}

func runRegister(ctx context.Context, c *cli, args []string) error {
	user, err := c.app.Accounts.Register(ctx, service.RegisterInput{
		Username:   c.flags.user,
		Password:   c.flags.password,
		FirstName:  c.flags.firstName,
		LastName:   c.flags.lastName,
		ContactNum: c.flags.contact,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Registered %s with %s gold\n", user.Username, user.Gold)
	return nil
}

func runCatalog(ctx context.Context, c *cli, args []string) error {
	products, err := c.app.Shop.Catalog(ctx)
	if err != nil {
		return err
	}

	w := table()
	fmt.Fprintln(w, "#\tID\tNAME\tPRICE\tHP\tLVL\tATK\tDESCRIPTION")
	for i, p := range products {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%d\t%d\t%s\n",
			i+1, p.ID, p.Name, p.Price, p.MaxHealth, p.Level, p.AttackPower, p.Description)
	}
	return w.Flush()
}

func runBuy(ctx context.Context, c *cli, args []string) error {
	pos, err := parsePosition(args[0])
	if err != nil {
		return err
	}
	pet, err := c.app.Shop.Purchase(ctx, c.session.Username, pos)
	if err != nil {
		return err
	}
	fmt.Printf("You bought %s (%s)\n", pet.Name, pet.UniqueID)
	return nil
}

func runInventory(ctx context.Context, c *cli, args []string) error {
	user, err := c.app.Accounts.Profile(ctx, c.session.Username)
	if err != nil {
		return err
	}

	fmt.Printf("%s %s (%s), %s gold\n", user.FirstName, user.LastName, user.Username, user.Gold)
	w := table()
	fmt.Fprintln(w, "PET ID\tNAME\tLVL\tHP\tATK\tEXP")
	for _, p := range user.Inventory {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d/%d\t%d\t%d\n",
			p.UniqueID, p.Name, p.Level, p.Health, p.MaxHealth, p.AttackPower, p.Exp)
	}
	return w.Flush()
}

func runSell(ctx context.Context, c *cli, args []string) error {
	refund, err := c.app.Inventory.Sell(ctx, c.session.Username, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Sold for %s gold\n", refund)
	return nil
}

func runRename(ctx context.Context, c *cli, args []string) error {
	if err := c.app.Inventory.Rename(ctx, c.session.Username, args[0], args[1]); err != nil {
		return err
	}
	fmt.Println("Renamed to", args[1])
	return nil
}

func runList(ctx context.Context, c *cli, args []string) error {
	price, err := parseGold(args[1])
	if err != nil {
		return err
	}
	listing, err := c.app.Market.List(ctx, c.session.Username, args[0], price)
	if err != nil {
		return err
	}
	fmt.Printf("Listed %s for %s gold\n", listing.PetName, listing.Price)
	return nil
}

func runMarket(ctx context.Context, c *cli, args []string) error {
	listings, err := c.app.Market.Listings(ctx)
	if err != nil {
		return err
	}

	w := table()
	fmt.Fprintln(w, "#\tPET ID\tNAME\tSELLER\tPRICE\tLVL\tHP\tATK")
	for i, l := range listings {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%d\t%d\t%d\n",
			i+1, l.PetID, l.PetName, l.Seller, l.Price, l.PetLevel, l.PetHealth, l.PetAttack)
	}
	return w.Flush()
}

func runMarketBuy(ctx context.Context, c *cli, args []string) error {
	pos, err := parsePosition(args[0])
	if err != nil {
		return err
	}
	pet, err := c.app.Market.Buy(ctx, c.session.Username, pos)
	if err != nil {
		return err
	}
	fmt.Printf("You bought %s (%s)\n", pet.Name, pet.UniqueID)
	return nil
}

func runDelist(ctx context.Context, c *cli, args []string) error {
	if err := c.app.Market.Delist(ctx, c.session.Username, args[0]); err != nil {
		return err
	}
	fmt.Println("Listing withdrawn")
	return nil
}

func runRedeem(ctx context.Context, c *cli, args []string) error {
	credited, err := c.app.Redeem.Redeem(ctx, c.session.Username, args[0])
	if err != nil {
		return err
	}
	fmt.Printf("Redeemed %s gold\n", credited)
	return nil
}

func runGenCodes(ctx context.Context, c *cli, args []string) error {
	value, err := parseGold(args[0])
	if err != nil {
		return err
	}
	count, err := strconv.Atoi(args[1])
	if err != nil {
		return service.ErrInvalidAmount
	}

	codes, err := c.app.Redeem.Generate(ctx, value, count)
	for _, rc := range codes {
		fmt.Println(rc.Code)
	}
	return err
}

func runTop(ctx context.Context, c *cli, args []string) error {
	top, err := c.app.Shop.TopSellers(ctx, c.flags.limit)
	if err != nil {
		return err
	}

	w := table()
	fmt.Fprintln(w, "RANK\tPRODUCT\tSOLD")
	for i, t := range top {
		fmt.Fprintf(w, "%d\t%s\t%d\n", i+1, t.Product.Name, t.Count)
	}
	return w.Flush()
}

func runHistory(ctx context.Context, c *cli, args []string) error {
	purchases, err := c.app.Shop.History(ctx, c.session.Username)
	if err != nil {
		return err
	}

	w := table()
	fmt.Fprintln(w, "TIME\tPRODUCT\tPRICE")
	for _, p := range purchases {
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.Timestamp.Local().Format("2006-01-02 15:04"), p.ProductName, p.PricePaid)
	}
	return w.Flush()
}

func runAnnounce(ctx context.Context, c *cli, args []string) error {
	if err := c.app.Admin.SetAnnouncement(ctx, c.session.Username, args[0]); err != nil {
		return err
	}
	fmt.Println("Announcement updated")
	return nil
}

func runActivity(ctx context.Context, c *cli, args []string) error {
	username := ""
	if len(args) > 0 {
		username = args[0]
	}
	entries, err := c.app.Admin.ActivityFor(ctx, c.session.Username, username, c.flags.limit)
	if err != nil {
		return err
	}
	for _, e := range entries {
		fmt.Printf("[%s] %s: %s\n", e.Time.Format("2006-01-02 15:04:05"), e.Username, e.Message)
	}
	return nil
}
