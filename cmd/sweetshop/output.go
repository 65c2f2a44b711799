package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/sweetshop/sweetshop/domain/entity"
)

func (c *cli) printJSON(v interface{}) error {
	enc := json.NewEncoder(c.out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (c *cli) printUser(u *entity.UserProfile, prefix string) error {
	if u == nil {
		return errLoginRequired
	}
	if c.jsonOut {
		return c.printJSON(u)
	}
	if prefix != "" {
		prefix += " "
	}
	_, err := fmt.Fprintf(c.out, "%s%s <%s> (%s)\n", prefix, u.Name, u.Email, u.Role)
	return err
}

func (c *cli) printSweets(sweets []entity.Sweet) error {
	if c.jsonOut {
		if sweets == nil {
			sweets = []entity.Sweet{}
		}
		return c.printJSON(sweets)
	}
	if len(sweets) == 0 {
		_, err := fmt.Fprintln(c.out, "No sweets found.")
		return err
	}

	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tPRICE\tQTY")
	for _, s := range sweets {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%.2f\t%d\n", s.ID, s.Name, s.Category, s.Price, s.Quantity)
	}
	return tw.Flush()
}

func (c *cli) printSweet(s *entity.Sweet) error {
	if c.jsonOut {
		return c.printJSON(s)
	}
	tw := tabwriter.NewWriter(c.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID:\t%s\n", s.ID)
	fmt.Fprintf(tw, "Name:\t%s\n", s.Name)
	fmt.Fprintf(tw, "Category:\t%s\n", s.Category)
	if s.Description != nil {
		fmt.Fprintf(tw, "Description:\t%s\n", *s.Description)
	}
	fmt.Fprintf(tw, "Price:\t%.2f\n", s.Price)
	fmt.Fprintf(tw, "Stock:\t%d\n", s.Quantity)
	if !s.CreatedAt.IsZero() {
		fmt.Fprintf(tw, "Added:\t%s\n", s.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}
