package pricing

import (
	"testing"

	"imprenta-studio/models"
)

func TestReduceSelectTier(t *testing.T) {
	catalog := mustCatalog(t, businessCardProduct())

	sel := NoSelection()
	if catalog.CanSubmit(sel) {
		t.Fatal("empty selection must not be submittable")
	}

	sel = catalog.Reduce(sel, SelectTier{Index: 1})
	if sel.TierIndex != 1 || sel.Quantity != 500 {
		t.Fatalf("after SelectTier(1): index=%d qty=%d, want 1/500", sel.TierIndex, sel.Quantity)
	}

	// Out-of-range tier leaves the selection unchanged.
	same := catalog.Reduce(sel, SelectTier{Index: 7})
	if same.TierIndex != 1 || same.Quantity != 500 {
		t.Fatalf("out-of-range SelectTier changed state: %+v", same)
	}
}

func TestReduceIsImmutable(t *testing.T) {
	catalog := mustCatalog(t, businessCardProduct())

	before := catalog.Reduce(NoSelection(), SelectTier{Index: 0})
	before = catalog.Reduce(before, SelectOption{Label: "Finish", Value: models.SelectedValue{Choice: "matte"}})

	after := catalog.Reduce(before, SelectOption{Label: "Finish", Value: models.SelectedValue{Choice: "glossy"}})

	if before.Options["Finish"].Choice != "matte" {
		t.Fatalf("Reduce mutated its input: %+v", before.Options)
	}
	if after.Options["Finish"].Choice != "glossy" {
		t.Fatalf("Reduce did not apply the upsert: %+v", after.Options)
	}
}

func TestSubmissionGating(t *testing.T) {
	catalog := mustCatalog(t, businessCardProduct())

	sel := catalog.Reduce(NoSelection(), SelectTier{Index: 0})
	if catalog.CanSubmit(sel) {
		t.Fatal("required option unselected, CanSubmit must be false")
	}
	missing := catalog.MissingRequired(sel)
	if len(missing) != 1 || missing[0] != "Finish" {
		t.Fatalf("MissingRequired = %v, want [Finish]", missing)
	}
	if _, err := catalog.OrderIntent(sel); err == nil {
		t.Fatal("OrderIntent must fail while a required option is missing")
	}

	sel = catalog.Reduce(sel, SelectOption{Label: "Finish", Value: models.SelectedValue{Choice: "glossy"}})
	if !catalog.CanSubmit(sel) {
		t.Fatal("all required options selected, CanSubmit must be true")
	}

	intent, err := catalog.OrderIntent(sel)
	if err != nil {
		t.Fatalf("OrderIntent: %v", err)
	}
	if intent.Pricing != catalog.Price(sel) {
		t.Fatalf("snapshot pricing %+v differs from resolver output %+v", intent.Pricing, catalog.Price(sel))
	}
	if intent.TierQuantity != 100 || intent.Quantity != 100 {
		t.Fatalf("snapshot quantities: tier=%d qty=%d, want 100/100", intent.TierQuantity, intent.Quantity)
	}
}

func TestOrderIntentSnapshotIsIsolated(t *testing.T) {
	catalog := mustCatalog(t, businessCardProduct())

	sel := catalog.Reduce(NoSelection(), SelectTier{Index: 0})
	sel = catalog.Reduce(sel, SelectOption{Label: "Finish", Value: models.SelectedValue{Choice: "glossy"}})

	intent, err := catalog.OrderIntent(sel)
	if err != nil {
		t.Fatalf("OrderIntent: %v", err)
	}
	snapshot := intent.Pricing

	// Mutations after the snapshot must not leak into it.
	sel.Options["Finish"] = models.SelectedValue{Choice: "matte"}
	if intent.SelectedOptions["Finish"].Choice != "glossy" {
		t.Fatalf("snapshot options mutated: %+v", intent.SelectedOptions)
	}
	if intent.Pricing != snapshot {
		t.Fatalf("snapshot pricing mutated: %+v", intent.Pricing)
	}
}

func TestMissingRequiredNumericOption(t *testing.T) {
	product := businessCardProduct()
	product.Options = append(product.Options, models.ProductOption{
		Label:            "Ink Colors",
		Kind:             models.OptionKindNumericRange,
		IsRequired:       true,
		NumericMin:       1,
		NumericMax:       4,
		NumericUnitPrice: 20,
	})
	catalog := mustCatalog(t, product)

	sel := catalog.Reduce(NoSelection(), SelectTier{Index: 0})
	sel = catalog.Reduce(sel, SelectOption{Label: "Finish", Value: models.SelectedValue{Choice: "matte"}})
	sel = catalog.Reduce(sel, SelectOption{Label: "Ink Colors", Value: models.SelectedValue{Amount: 0}})

	missing := catalog.MissingRequired(sel)
	if len(missing) != 1 || missing[0] != "Ink Colors" {
		t.Fatalf("MissingRequired = %v, want [Ink Colors]", missing)
	}

	sel = catalog.Reduce(sel, SelectOption{Label: "Ink Colors", Value: models.SelectedValue{Amount: 2}})
	if !catalog.CanSubmit(sel) {
		t.Fatal("numeric amount set, CanSubmit must be true")
	}
}

func TestSetQuantityOverride(t *testing.T) {
	catalog := mustCatalog(t, businessCardProduct())

	sel := catalog.Reduce(NoSelection(), SelectTier{Index: 0})
	sel = catalog.Reduce(sel, SelectOption{Label: "Finish", Value: models.SelectedValue{Choice: "glossy"}})
	sel = catalog.Reduce(sel, SetQuantity{Quantity: 150})

	if sel.Quantity != 150 {
		t.Fatalf("quantity = %d, want 150", sel.Quantity)
	}

	breakdown := catalog.Price(sel)
	if breakdown.OptionsPrice != 50*150 {
		t.Fatalf("optionsPrice = %d, want %d", breakdown.OptionsPrice, 50*150)
	}

	intent, err := catalog.OrderIntent(sel)
	if err != nil {
		t.Fatalf("OrderIntent: %v", err)
	}
	if intent.Quantity != 150 || intent.TierQuantity != 100 {
		t.Fatalf("intent quantities: qty=%d tier=%d, want 150/100", intent.Quantity, intent.TierQuantity)
	}

	// Selecting a tier again snaps the quantity back to nominal.
	sel = catalog.Reduce(sel, SelectTier{Index: 1})
	if sel.Quantity != 500 {
		t.Fatalf("quantity after SelectTier(1) = %d, want 500", sel.Quantity)
	}

	// Non-positive override is ignored.
	sel = catalog.Reduce(sel, SetQuantity{Quantity: -5})
	if sel.Quantity != 500 {
		t.Fatalf("negative SetQuantity changed quantity to %d", sel.Quantity)
	}
}
