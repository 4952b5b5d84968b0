package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"github.com/five82/shopdesk/internal/admin"
	"github.com/five82/shopdesk/internal/app"
	"github.com/five82/shopdesk/internal/auth"
	"github.com/five82/shopdesk/internal/listing"
	"github.com/five82/shopdesk/internal/orders"
	"github.com/five82/shopdesk/internal/prefs"
	"github.com/five82/shopdesk/internal/shopapi"
)

const requestTimeout = 30 * time.Second

// adminPageSize is large enough to load every row a bulk command names.
const adminPageSize = 100

var errNotAdmin = errors.New("an admin session is required; run shopdesk login first")

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...)
}

func price(d decimal.Decimal) string {
	return d.StringFixed(0) + " ₫"
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "search the catalogue",
		ArgsUsage: "[keyword]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "sort", Usage: "newest, price_asc, price_desc, name or bestseller"},
			&cli.IntFlag{Name: "page", Value: 1},
			&cli.IntFlag{Name: "size", Usage: "page size"},
		},
		Action: withServices(func(c *cli.Context, svc *app.Services) error {
			sortBy := c.String("sort")
			if sortBy == "" {
				sortBy = svc.Prefs.SortBy
			}
			size := c.Int("size")
			if size <= 0 {
				size = svc.Prefs.PageSizeOr(svc.Config.PageSize)
			}
			ctx, cancel := context.WithTimeout(c.Context, requestTimeout)
			defer cancel()
			page, err := svc.Client.FilterProducts(ctx, shopapi.ProductFilter{
				Keyword:  strings.Join(c.Args().Slice(), " "),
				Page:     c.Int("page"),
				PageSize: size,
				SortBy:   sortBy,
			})
			if err != nil {
				return err
			}
			t := newTable("ID", "Tên", "Giá", "Kho", "Thương hiệu", "")
			for _, p := range page.Items {
				sale := ""
				if p.OnSale() {
					sale = "SALE"
				}
				liked := ""
				if svc.Wishlist.Has(p.ID) {
					liked = "♥ "
				}
				t.Row(p.ID, liked+p.Name, price(p.EffectivePrice()), fmt.Sprint(p.Stock), p.Brand, sale)
			}
			fmt.Fprintln(c.App.Writer, t)
			fmt.Fprintf(c.App.Writer, "Đã tìm thấy %d sản phẩm (trang %d/%d)\n", len(page.Items), page.Page, page.TotalPages)
			return nil
		}),
	}
}

func wishlistCommand() *cli.Command {
	return &cli.Command{
		Name:  "wishlist",
		Usage: "manage liked products",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "refetch and list liked products",
				Action: withServices(func(c *cli.Context, svc *app.Services) error {
					ctx, cancel := context.WithTimeout(c.Context, requestTimeout)
					defer cancel()
					items, err := svc.Wishlist.Reconcile(ctx, svc.Client.Product)
					if err != nil {
						return err
					}
					t := newTable("ID", "Tên", "Giá", "Kho")
					for _, p := range items {
						t.Row(p.ID, p.Name, price(p.EffectivePrice()), fmt.Sprint(p.Stock))
					}
					fmt.Fprintln(c.App.Writer, t)
					if missing := svc.Wishlist.Len() - len(items); missing > 0 {
						fmt.Fprintf(c.App.Writer, "%d sản phẩm không còn tồn tại\n", missing)
					}
					return nil
				}),
			},
			{
				Name:      "add",
				Usage:     "like a product",
				ArgsUsage: "<product-id>",
				Action: withServices(func(c *cli.Context, svc *app.Services) error {
					id := c.Args().First()
					if id == "" {
						return cli.Exit("product id required", 2)
					}
					added, err := svc.Wishlist.Add(id)
					if err != nil {
						return err
					}
					if !added {
						fmt.Fprintf(c.App.Writer, "%s đã có trong danh sách yêu thích\n", id)
						return nil
					}
					fmt.Fprintf(c.App.Writer, "Đã thêm %s\n", id)
					return nil
				}),
			},
			{
				Name:      "remove",
				Usage:     "unlike a product",
				ArgsUsage: "<product-id>",
				Action: withServices(func(c *cli.Context, svc *app.Services) error {
					id := c.Args().First()
					if id == "" {
						return cli.Exit("product id required", 2)
					}
					removed, err := svc.Wishlist.Remove(id)
					if err != nil {
						return err
					}
					if !removed {
						fmt.Fprintf(c.App.Writer, "%s không có trong danh sách yêu thích\n", id)
						return nil
					}
					fmt.Fprintf(c.App.Writer, "Đã bỏ %s\n", id)
					return nil
				}),
			},
		},
	}
}

func loginCommand() *cli.Command {
	return &cli.Command{
		Name:  "login",
		Usage: "sign in and store the session",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true},
			&cli.StringFlag{Name: "password", Aliases: []string{"p"}, EnvVars: []string{"SHOPDESK_PASSWORD"},
				Usage: "read from stdin when empty"},
		},
		Action: withServices(func(c *cli.Context, svc *app.Services) error {
			password := c.String("password")
			if password == "" {
				fmt.Fprint(c.App.ErrWriter, "Mật khẩu: ")
				line, err := bufio.NewReader(c.App.Reader).ReadString('\n')
				if err != nil && line == "" {
					return fmt.Errorf("read password: %w", err)
				}
				password = strings.TrimRight(line, "\r\n")
			}
			ctx, cancel := context.WithTimeout(c.Context, requestTimeout)
			defer cancel()
			user, err := svc.Auth.Login(ctx, auth.LoginRequest{Username: c.String("username"), Password: password})
			if err != nil {
				return err
			}
			role := "khách hàng"
			if user.IsAdmin {
				role = "quản trị"
			}
			fmt.Fprintf(c.App.Writer, "Đã đăng nhập: %s (%s)\n", user.Username, role)
			return nil
		}),
	}
}

func logout(c *cli.Context, svc *app.Services) error {
	if err := svc.Auth.Logout(); err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, "Đã đăng xuất")
	return nil
}

func whoami(c *cli.Context, svc *app.Services) error {
	user, ok := svc.Session.User()
	if !ok {
		fmt.Fprintln(c.App.Writer, "Chưa đăng nhập")
		return nil
	}
	t := newTable("Trường", "Giá trị").
		Row("Tài khoản", user.Username).
		Row("Họ tên", user.Name).
		Row("Email", user.Email).
		Row("Quản trị", fmt.Sprint(user.IsAdmin))
	if exp := svc.Session.ExpiresAt(); !exp.IsZero() {
		t.Row("Hết hạn", exp.Local().Format("2006-01-02 15:04"))
	}
	fmt.Fprintln(c.App.Writer, t)
	return nil
}

func passwordCommand() *cli.Command {
	return &cli.Command{
		Name:  "password",
		Usage: "change or reset a password",
		Subcommands: []*cli.Command{
			{
				Name:  "change",
				Usage: "change the signed-in account's password",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "current", Required: true},
					&cli.StringFlag{Name: "new", Required: true},
					&cli.StringFlag{Name: "confirm", Usage: "defaults to --new"},
				},
				Action: withServices(func(c *cli.Context, svc *app.Services) error {
					confirm := c.String("confirm")
					if confirm == "" {
						confirm = c.String("new")
					}
					ctx, cancel := context.WithTimeout(c.Context, requestTimeout)
					defer cancel()
					err := svc.Auth.ChangePassword(ctx, auth.ChangePasswordRequest{
						Current: c.String("current"),
						New:     c.String("new"),
						Confirm: confirm,
					})
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, "Đã đổi mật khẩu")
					return nil
				}),
			},
			{
				Name:      "forgot",
				Usage:     "email a reset code",
				ArgsUsage: "<email>",
				Action: withServices(func(c *cli.Context, svc *app.Services) error {
					ctx, cancel := context.WithTimeout(c.Context, requestTimeout)
					defer cancel()
					if err := svc.Auth.ForgotPassword(ctx, c.Args().First()); err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, "Đã gửi mã xác nhận")
					return nil
				}),
			},
			{
				Name:  "reset",
				Usage: "set a new password with the emailed code",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "email", Required: true},
					&cli.StringFlag{Name: "code", Required: true},
					&cli.StringFlag{Name: "new", Required: true},
				},
				Action: withServices(func(c *cli.Context, svc *app.Services) error {
					ctx, cancel := context.WithTimeout(c.Context, requestTimeout)
					defer cancel()
					err := svc.Auth.ResetPassword(ctx, auth.ResetPasswordRequest{
						Email:       c.String("email"),
						Code:        c.String("code"),
						NewPassword: c.String("new"),
						Confirm:     c.String("new"),
					})
					if err != nil {
						return err
					}
					fmt.Fprintln(c.App.Writer, "Đã đặt lại mật khẩu")
					return nil
				}),
			},
		},
	}
}

// withAdmin is withServices for commands that need an admin session.
func withAdmin(fn func(ctx context.Context, c *cli.Context, svc *app.Services) error) cli.ActionFunc {
	return withServices(func(c *cli.Context, svc *app.Services) error {
		if !svc.Session.IsAdmin() {
			return errNotAdmin
		}
		ctx, cancel := context.WithTimeout(c.Context, requestTimeout)
		defer cancel()
		return fn(ctx, c, svc)
	})
}

func adminCommand() *cli.Command {
	return &cli.Command{
		Name:  "admin",
		Usage: "back-office actions",
		Subcommands: []*cli.Command{
			{
				Name:  "users",
				Usage: "list users",
				Action: withAdmin(func(ctx context.Context, c *cli.Context, svc *app.Services) error {
					if err := svc.Admin.Users.Load(ctx, listing.Query{PageSize: adminPageSize}); err != nil {
						return err
					}
					t := newTable("ID", "Tài khoản", "Họ tên", "Email", "Trạng thái")
					for _, u := range svc.Admin.Users.Items() {
						t.Row(u.ID, u.Username, u.Name, u.Email, string(u.Status))
					}
					fmt.Fprintln(c.App.Writer, t)
					return nil
				}),
			},
			{
				Name:      "ban",
				Usage:     "ban users",
				ArgsUsage: "<user-id>...",
				Action: withAdmin(func(ctx context.Context, c *cli.Context, svc *app.Services) error {
					return setUsers(ctx, c, svc, true)
				}),
			},
			{
				Name:      "unban",
				Usage:     "unban users",
				ArgsUsage: "<user-id>...",
				Action: withAdmin(func(ctx context.Context, c *cli.Context, svc *app.Services) error {
					return setUsers(ctx, c, svc, false)
				}),
			},
			{
				Name:  "logos",
				Usage: "list active logos and report a conflict",
				Action: withAdmin(func(ctx context.Context, c *cli.Context, svc *app.Services) error {
					if err := svc.Admin.Settings.Load(ctx, listing.Query{}); err != nil {
						return err
					}
					t := newTable("ID", "Loại", "Tên", "Hiện")
					for _, s := range svc.Admin.Settings.Items() {
						t.Row(fmt.Sprint(s.ID), shopapi.SettingTypeLabel(s.Type), s.Name, fmt.Sprint(s.Active()))
					}
					fmt.Fprintln(c.App.Writer, t)
					if conflicts := svc.Admin.LogoConflicts(); len(conflicts) > 1 {
						fmt.Fprintf(c.App.Writer, "%d logo đang bật; chọn một bằng: shopdesk admin resolve-logo <id>\n", len(conflicts))
					}
					return nil
				}),
			},
			{
				Name:      "resolve-logo",
				Usage:     "keep one logo active",
				ArgsUsage: "<setting-id>",
				Action: withAdmin(func(ctx context.Context, c *cli.Context, svc *app.Services) error {
					var id int64
					if _, err := fmt.Sscan(c.Args().First(), &id); err != nil {
						return cli.Exit("setting id required", 2)
					}
					if err := svc.Admin.Settings.Load(ctx, listing.Query{}); err != nil {
						return err
					}
					if err := svc.Admin.ResolveLogo(ctx, id); err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "Đã chọn logo %d\n", id)
					return nil
				}),
			},
			{
				Name:      "delete-products",
				Usage:     "delete products",
				ArgsUsage: "<product-id>...",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "hard", Usage: "also delete the image files"},
				},
				Action: withAdmin(func(ctx context.Context, c *cli.Context, svc *app.Services) error {
					ids := c.Args().Slice()
					if len(ids) == 0 {
						return cli.Exit("product ids required", 2)
					}
					if err := svc.Admin.Products.Load(ctx, listing.Query{PageSize: adminPageSize, SortBy: prefs.Defaults().SortBy}); err != nil {
						return err
					}
					if err := svc.Admin.DeleteProducts(ctx, ids, c.Bool("hard")); err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "Đã xóa %d sản phẩm\n", len(ids))
					return nil
				}),
			},
			{
				Name:  "products",
				Usage: "list products, optionally low stock only",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "sort", Value: string(admin.SortByName), Usage: "name, price or stock"},
					&cli.BoolFlag{Name: "desc"},
					&cli.IntFlag{Name: "low-stock", Value: -1, Usage: "only products with stock at or below this"},
				},
				Action: withAdmin(func(ctx context.Context, c *cli.Context, svc *app.Services) error {
					if err := svc.Admin.Products.Load(ctx, listing.Query{PageSize: adminPageSize}); err != nil {
						return err
					}
					sort := admin.ProductSort{Field: admin.ProductSortField(c.String("sort")), Desc: c.Bool("desc")}
					products := svc.Admin.SortedProducts(sort)
					if threshold := c.Int("low-stock"); threshold >= 0 {
						keep := admin.LowStock(threshold)
						filtered := products[:0]
						for _, p := range products {
							if keep(p) {
								filtered = append(filtered, p)
							}
						}
						products = filtered
					}
					t := newTable("ID", "Tên", "Giá", "Kho")
					for _, p := range products {
						t.Row(p.ID, p.Name, price(p.EffectivePrice()), fmt.Sprint(p.Stock))
					}
					fmt.Fprintln(c.App.Writer, t)
					return nil
				}),
			},
			{
				Name:  "orders",
				Usage: "list the sample orders",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "status", Usage: "pending, processing, shipped, delivered or cancelled"},
					&cli.StringFlag{Name: "sort", Value: orders.SortNewest, Usage: "newest, oldest, total or total-asc"},
				},
				Action: withAdmin(func(ctx context.Context, c *cli.Context, svc *app.Services) error {
					q := listing.Query{PageSize: adminPageSize, SortBy: c.String("sort")}
					if status := c.String("status"); status != "" {
						q.Filters = map[string]string{orders.FilterStatus: status}
					}
					page, err := svc.Orders.Fetch(ctx, q)
					if err != nil {
						return err
					}
					t := newTable("Mã", "Khách hàng", "SL", "Tổng", "Trạng thái", "Ngày đặt")
					for _, o := range page.Items {
						t.Row(o.ID, o.Customer, fmt.Sprint(o.Quantity()), price(o.Total), o.Status.Label(),
							o.PlacedAt.Format("2006-01-02 15:04"))
					}
					fmt.Fprintln(c.App.Writer, t)
					fmt.Fprintf(c.App.Writer, "Doanh thu đã giao: %s\n", price(svc.Orders.Revenue()))
					return nil
				}),
			},
		},
	}
}

func setUsers(ctx context.Context, c *cli.Context, svc *app.Services, ban bool) error {
	ids := c.Args().Slice()
	if len(ids) == 0 {
		return cli.Exit("user ids required", 2)
	}
	if err := svc.Admin.Users.Load(ctx, listing.Query{PageSize: adminPageSize}); err != nil {
		return err
	}
	var err error
	verb := "Đã khóa"
	if ban {
		err = svc.Admin.BanUsers(ctx, ids)
	} else {
		verb = "Đã mở khóa"
		err = svc.Admin.UnbanUsers(ctx, ids)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "%s %d người dùng\n", verb, len(ids))
	return nil
}
