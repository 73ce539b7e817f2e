package schema

// Premade returns the shipped templates in display order. Each call returns
// fresh values so callers may modify them.
func Premade() []Template {
	return []Template{
		{
			ID:       "type-1",
			Name:     "Type 1: Logo + Full Details + Code",
			Kind:     TemplatePremade,
			WidthMM:  50,
			HeightMM: 30,
			DPI:      DefaultDPI,
			Schema: Document{Elements: []ElementSpec{
				box("logo", KindImage, 8, 8, 80, 40, "logo_image"),
				text("pname", 100, 10, 220, 20, 14, "product_name"),
				text("sku", 100, 32, 220, 18, 12, "sku"),
				text("cat", 100, 52, 220, 16, 11, "category"),
				text("ptype", 100, 70, 220, 16, 11, "product_type"),
				text("comp", 8, 96, 220, 16, 11, "company_name"),
				text("addr", 8, 114, 240, 28, 10, "company_address"),
				text("cont", 8, 146, 240, 16, 10, "contact_details"),
				box("code", KindBarcode, 260, 96, 140, 60, "code_value"),
			}},
		},
		{
			ID:       "type-2",
			Name:     "Type 2: No Logo + Full Details + Code",
			Kind:     TemplatePremade,
			WidthMM:  50,
			HeightMM: 30,
			DPI:      DefaultDPI,
			Schema: Document{Elements: []ElementSpec{
				text("pname", 8, 10, 260, 20, 14, "product_name"),
				text("sku", 8, 34, 260, 18, 12, "sku"),
				text("cat", 8, 54, 260, 16, 11, "category"),
				text("ptype", 8, 72, 260, 16, 11, "product_type"),
				text("comp", 8, 96, 220, 16, 11, "company_name"),
				text("addr", 8, 114, 240, 28, 10, "company_address"),
				text("cont", 8, 146, 240, 16, 10, "contact_details"),
				box("code", KindQRCode, 260, 96, 60, 60, "code_value"),
			}},
		},
		{
			ID:       "type-3",
			Name:     "Type 3: Logo + Product Image + Full Details + Code",
			Kind:     TemplatePremade,
			WidthMM:  50,
			HeightMM: 50,
			DPI:      DefaultDPI,
			Schema: Document{Elements: []ElementSpec{
				box("logo", KindImage, 8, 8, 80, 40, "logo_image"),
				box("pimg", KindImage, 8, 54, 100, 100, "product_image"),
				text("pname", 120, 10, 240, 22, 14, "product_name"),
				text("sku", 120, 34, 240, 18, 12, "sku"),
				text("cat", 120, 56, 240, 16, 11, "category"),
				text("ptype", 120, 74, 240, 16, 11, "product_type"),
				text("comp", 120, 100, 220, 16, 11, "company_name"),
				text("addr", 120, 120, 240, 28, 10, "company_address"),
				text("cont", 120, 152, 240, 16, 10, "contact_details"),
				box("code", KindBarcode, 300, 100, 140, 60, "code_value"),
			}},
		},
	}
}

// PremadeByID looks up a shipped template.
func PremadeByID(id string) (Template, bool) {
	for _, t := range Premade() {
		if t.ID == id {
			return t, true
		}
	}
	return Template{}, false
}

func box(id string, kind Kind, x, y, w, h int, key string) ElementSpec {
	return ElementSpec{
		ID:      id,
		Type:    string(kind),
		X:       intPtr(x),
		Y:       intPtr(y),
		W:       intPtr(w),
		H:       intPtr(h),
		DataKey: key,
	}
}

func text(id string, x, y, w, h, size int, key string) ElementSpec {
	s := box(id, KindText, x, y, w, h, key)
	s.FontSize = intPtr(size)
	return s
}
