package cli

import "fmt"

type CategoryCmd struct {
	Add    CategoryAddCmd    `cmd:"" help:"Add a category."`
	List   CategoryListCmd   `cmd:"" help:"List categories."`
	Edit   CategoryEditCmd   `cmd:"" help:"Rename or recolor a category."`
	Delete CategoryDeleteCmd `cmd:"" help:"Delete a category, moving its habits to the first remaining one."`
}

type CategoryAddCmd struct {
	Name  string `arg:"" help:"Category name."`
	Color string `help:"Color name (red, orange, yellow, green, blue, purple, pink, teal, gray)." default:"blue"`
}

func (c *CategoryAddCmd) Run(ctx *Context) error {
	t, err := ctx.Tracker()
	if err != nil {
		return err
	}

	cat, err := t.AddCategory(c.Name, c.Color)
	if err != nil {
		return err
	}
	ctx.printf("Added category: %s\n", categoryStyle(cat.Color).Render(cat.Name))
	return nil
}

type CategoryListCmd struct{}

func (c *CategoryListCmd) Run(ctx *Context) error {
	t, err := ctx.Tracker()
	if err != nil {
		return err
	}

	counts := make(map[string]int)
	for _, h := range t.ListHabits(false) {
		counts[h.CategoryID]++
	}

	for _, cat := range t.ListCategories() {
		swatch := categoryStyle(cat.Color).Render("●")
		ctx.printf("%s %-8s  %-16s  %-7s  %d habits\n", swatch, shortID(cat.ID), cat.Name, cat.Color, counts[cat.ID])
	}
	return nil
}

type CategoryEditCmd struct {
	Category string `arg:"" help:"Category id or name."`
	Name     string `help:"New name."`
	Color    string `help:"New color."`
}

func (c *CategoryEditCmd) Run(ctx *Context) error {
	t, err := ctx.Tracker()
	if err != nil {
		return err
	}

	cat, err := resolveCategory(t, c.Category)
	if err != nil {
		return err
	}
	if c.Name != "" {
		cat.Name = c.Name
	}
	if c.Color != "" {
		cat.Color = c.Color
	}

	updated, err := t.UpdateCategory(cat)
	if err != nil {
		return err
	}
	ctx.printf("Updated category: %s\n", categoryStyle(updated.Color).Render(updated.Name))
	return nil
}

type CategoryDeleteCmd struct {
	Category string `arg:"" help:"Category id or name."`
}

func (c *CategoryDeleteCmd) Run(ctx *Context) error {
	t, err := ctx.Tracker()
	if err != nil {
		return err
	}

	cat, err := resolveCategory(t, c.Category)
	if err != nil {
		return err
	}
	if err := t.DeleteCategory(cat.ID); err != nil {
		return fmt.Errorf("cannot delete %q: %w", cat.Name, err)
	}
	ctx.printf("Deleted category: %s\n", cat.Name)
	return nil
}
