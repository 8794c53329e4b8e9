package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/annagav/garderobe/internal/client/models"
	"github.com/annagav/garderobe/internal/client/search"
)

const helpText = `commands:
  register | login | logout        account and reconciliation
  sync push | sync pull            force a reconciliation pass
  add | list | search <text>       clothing items
  fav <id> | del <id>              toggle favorite / delete item
  outfits [text]                   outfit search with item counts
  status | help | quit
`

func (a *App) repl(ctx context.Context) {
	fmt.Print(helpText)

	for {
		line, err := a.readString("> ")
		if err != nil {
			return
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		cmd, args := fields[0], fields[1:]
		if cmd == "quit" || cmd == "exit" {
			return
		}
		if err := a.dispatch(ctx, cmd, args); err != nil {
			fmt.Println("error:", err)
		}
	}
}

func (a *App) dispatch(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "help":
		fmt.Print(helpText)
		return nil
	case "status":
		fmt.Println("sync state:", a.sync.Status())
		return nil
	case "register":
		return a.authenticate(ctx, true)
	case "login":
		return a.authenticate(ctx, false)
	case "logout":
		return a.sync.Logout(ctx)
	case "sync":
		direction := models.PullRemote
		if len(args) > 0 && args[0] == "push" {
			direction = models.PushLocal
		}
		return a.sync.Reconcile(ctx, direction)
	case "add":
		return a.addItem(ctx)
	case "list":
		return a.listItems(ctx, search.Criteria{})
	case "search":
		return a.listItems(ctx, search.Criteria{Query: strings.Join(args, " ")})
	case "fav":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		fav, err := a.wardrobe.ToggleFavorite(ctx, id)
		if err != nil {
			return err
		}
		fmt.Println("favorite:", fav)
		return nil
	case "del":
		id, err := parseID(args)
		if err != nil {
			return err
		}
		return a.wardrobe.DeleteItem(ctx, id)
	case "outfits":
		return a.listOutfits(ctx, strings.Join(args, " "))
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *App) authenticate(ctx context.Context, register bool) error {
	email, err := a.readString("email: ")
	if err != nil {
		return err
	}
	password, err := a.readPassword("password: ")
	if err != nil {
		return err
	}

	direction := models.PullRemote
	if !register {
		answer, err := a.readString("push local data to server? [y/N]: ")
		if err != nil {
			return err
		}
		if strings.EqualFold(answer, "y") {
			direction = models.PushLocal
		}
	}

	if register {
		return a.sync.Register(ctx, email, password, direction)
	}
	return a.sync.Login(ctx, email, password, direction)
}

func (a *App) addItem(ctx context.Context) error {
	item := &models.ClothingItem{}
	var err error

	if item.Name, err = a.readString("name: "); err != nil {
		return err
	}
	if item.Category, err = a.readString("category: "); err != nil {
		return err
	}
	if item.Season, err = a.readString("season: "); err != nil {
		return err
	}
	if item.Material, err = a.readString("material: "); err != nil {
		return err
	}
	if item.Brand, err = a.readString("brand (optional): "); err != nil {
		return err
	}
	if item.ImageURI, err = a.readString("image path (optional): "); err != nil {
		return err
	}

	if err := a.wardrobe.AddItem(ctx, item); err != nil {
		return err
	}
	fmt.Println("added item", item.ID)
	return nil
}

func (a *App) listItems(ctx context.Context, c search.Criteria) error {
	found, err := a.wardrobe.SearchItems(ctx, c)
	if err != nil {
		return err
	}
	for _, item := range found {
		fav := " "
		if item.Favorite {
			fav = "*"
		}
		fmt.Printf("%s %4d  %-30s %-15s %s\n", fav, item.ID, item.Name, item.Category, item.Season)
	}
	fmt.Println(len(found), "item(s)")
	return nil
}

func (a *App) listOutfits(ctx context.Context, query string) error {
	found, err := a.wardrobe.SearchOutfits(ctx, query)
	if err != nil {
		return err
	}
	for _, o := range found {
		fmt.Printf("%4d  %-30s %d item(s)\n", o.ID, o.Name, o.ItemCount)
	}
	fmt.Println(len(found), "outfit(s)")
	return nil
}

func parseID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("id required")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}
