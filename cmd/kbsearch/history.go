package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/pders01/kbsearch/internal/storage"
	"github.com/spf13/cobra"
)

var errNoStore = errors.New("storage is disabled (--db :memory:)")

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List articles whose highlights were opened",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store *storage.Store) error {
			viewed, err := store.ViewedArticles()
			if err != nil {
				return fmt.Errorf("listing viewed articles: %w", err)
			}
			if len(viewed) == 0 {
				fmt.Println("No viewed articles")
				return nil
			}
			for _, a := range viewed {
				fmt.Printf("#%d\t%s\n", a.ID, a.FirstViewed.Local().Format(time.DateTime))
			}
			return nil
		})
	},
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget every viewed article",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withStore(func(store *storage.Store) error {
			if err := store.ClearViewed(); err != nil {
				return fmt.Errorf("clearing viewed articles: %w", err)
			}
			fmt.Println("Cleared viewed articles")
			return nil
		})
	},
}

func withStore(fn func(*storage.Store) error) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	if store == nil {
		return errNoStore
	}
	defer store.Close()
	return fn(store)
}
