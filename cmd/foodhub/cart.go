package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"foodhub/internal/domain/entity"
	"foodhub/pkg/errors"
)

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Manage your cart",
}

var (
	addItem    entity.CartItem
	addReplace bool
	updateID   string
	updateQty  int
)

var cartListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the current cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.cart.Load(cmd.Context()); err != nil {
			return err
		}

		items := a.cart.Items()
		if len(items) == 0 {
			fmt.Println("Your cart is empty.")
			return nil
		}

		fmt.Printf("Cart (%s):\n", items[0].StoreName)
		for _, item := range items {
			fmt.Printf("  %dx %-30s Rp%d\n", item.Quantity, item.Name, item.Price*int64(item.Quantity))
		}
		fmt.Printf("Total: Rp%d (%d items)\n", a.cart.CartTotal(), a.cart.ItemCount())
		if !a.cart.IsOnline() {
			fmt.Println("(offline - showing locally saved cart)")
		}
		return nil
	},
}

var cartAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a menu item to the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.cart.Load(cmd.Context()); err != nil {
			return err
		}

		result := a.cart.AddToCart(cmd.Context(), addItem)
		if !result.Success && result.ErrorCode == errors.CodeDifferentStore {
			if !addReplace {
				fmt.Println(result.Message)
				fmt.Println("Re-run with --replace to clear the cart and add this item.")
				return nil
			}
			result = a.cart.ClearCartAndAddItem(cmd.Context(), addItem)
		}
		if !result.Success {
			return fmt.Errorf("%s", result.Message)
		}

		fmt.Printf("Added. Cart total: Rp%d (%d items)\n", a.cart.CartTotal(), a.cart.ItemCount())
		return nil
	},
}

var cartUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Set the quantity of a cart item (0 removes it)",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.cart.Load(cmd.Context()); err != nil {
			return err
		}
		if err := a.cart.UpdateQuantity(cmd.Context(), updateID, updateQty); err != nil {
			return err
		}

		fmt.Printf("Updated. Cart total: Rp%d (%d items)\n", a.cart.CartTotal(), a.cart.ItemCount())
		return nil
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "remove <menu-id>",
	Short: "Remove an item from the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.cart.Load(cmd.Context()); err != nil {
			return err
		}
		if err := a.cart.RemoveFromCart(cmd.Context(), args[0]); err != nil {
			return err
		}

		fmt.Printf("Removed. Cart total: Rp%d (%d items)\n", a.cart.CartTotal(), a.cart.ItemCount())
		return nil
	},
}

var cartClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the cart",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.cart.Load(cmd.Context()); err != nil {
			return err
		}
		if err := a.cart.ClearCart(cmd.Context()); err != nil {
			return err
		}

		fmt.Println("Cart cleared.")
		return nil
	},
}

var cartSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Push the local cart to the backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp()
		if err != nil {
			return err
		}
		defer a.close()

		if err := a.cart.Load(cmd.Context()); err != nil {
			return err
		}
		if err := a.cart.SyncWithBackend(cmd.Context()); err != nil {
			return err
		}

		fmt.Printf("Synced: %d item(s).\n", a.cart.ItemCount())
		return nil
	},
}

func init() {
	cartAddCmd.Flags().StringVar(&addItem.ID, "id", "", "menu item id")
	cartAddCmd.Flags().StringVar(&addItem.Name, "name", "", "menu item name")
	cartAddCmd.Flags().Int64Var(&addItem.Price, "price", 0, "unit price in rupiah")
	cartAddCmd.Flags().IntVar(&addItem.Quantity, "qty", 1, "quantity")
	cartAddCmd.Flags().StringVar(&addItem.SellerID, "seller", "", "seller id")
	cartAddCmd.Flags().StringVar(&addItem.StoreName, "store", "", "store name")
	cartAddCmd.Flags().BoolVar(&addReplace, "replace", false, "clear the cart first on a store conflict")
	cartAddCmd.MarkFlagRequired("id")

	cartUpdateCmd.Flags().StringVar(&updateID, "id", "", "menu item id")
	cartUpdateCmd.Flags().IntVar(&updateQty, "qty", 0, "new quantity")
	cartUpdateCmd.MarkFlagRequired("id")

	cartCmd.AddCommand(cartListCmd, cartAddCmd, cartUpdateCmd, cartRemoveCmd, cartClearCmd, cartSyncCmd)
}
