package protocol

import "testing"

func TestItemRoundTrip(t *testing.T) {
	cases := []struct {
		name string
		item Item
	}{
		{
			name: "weapon",
			item: Item{
				TypeMajor:     ItemTypeWeapon,
				TypeMinor:     3,
				Seed:          123456,
				Recipe:        ItemTypeVoid,
				MinusModifier: -2,
				Rarity:        RarityEpic,
				Material:      MaterialIron,
				Flags:         FlagSet16(1 << ItemFlagAdapted),
				Level:         42,
				SpiritCounter: 2,
			},
		},
		{
			name: "formula with spirits",
			item: Item{
				TypeMajor: ItemTypeFormula,
				TypeMinor: 5,
				Recipe:    ItemTypeWeapon,
				Rarity:    RarityLegendary,
				Material:  MaterialGold,
				Level:     10,
			},
		},
		{
			name: "leftovers",
			item: Item{
				TypeMajor: ItemTypeLeftovers,
				TypeMinor: 9,
				Recipe:    ItemTypeConsumable,
			},
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			in := c.item
			in.Spirits[0] = Spirit{Position: [3]int8{1, -2, 3}, Material: MaterialRuby, Level: 7}
			in.Spirits[31] = Spirit{Position: [3]int8{-1, -1, -1}, Material: MaterialFire, Level: -3}

			w := NewWriter()
			WriteItem(w, in)
			if w.Len() != ItemSize {
				t.Fatalf("encoded length = %d, want %d", w.Len(), ItemSize)
			}

			r := NewReader(w.Bytes())
			out, err := ReadItem(r)
			if err != nil {
				t.Fatalf("ReadItem: %v", err)
			}
			if r.Remaining() != 0 {
				t.Fatalf("%d trailing bytes after ReadItem", r.Remaining())
			}

			if out.TypeMajor != in.TypeMajor || out.TypeMinor != in.TypeMinor ||
				out.Seed != in.Seed || out.Recipe != in.Recipe ||
				out.MinusModifier != in.MinusModifier || out.Rarity != in.Rarity ||
				out.Material != in.Material || out.Level != in.Level ||
				out.SpiritCounter != in.SpiritCounter {
				t.Fatalf("round trip mismatch: got %+v, want %+v", out, in)
			}
			if out.Flags&0xFF != in.Flags&0xFF {
				t.Fatalf("flags mismatch: got %v, want %v", out.Flags, in.Flags)
			}
			if out.Spirits[0] != in.Spirits[0] || out.Spirits[31] != in.Spirits[31] {
				t.Fatalf("spirit mismatch: got %+v/%+v, want %+v/%+v",
					out.Spirits[0], out.Spirits[31], in.Spirits[0], in.Spirits[31])
			}
		})
	}
}

func TestItemRoundTripShortBuffer(t *testing.T) {
	r := NewReader(make([]byte, ItemSize-1))
	if _, err := ReadItem(r); err == nil {
		t.Fatal("expected error decoding a truncated item")
	}
}

func TestIsItemSwapType(t *testing.T) {
	for _, t2 := range []ItemTypeMajor{ItemTypeFormula, ItemTypeLeftovers} {
		if !isItemSwapType(t2) {
			t.Errorf("isItemSwapType(%v) = false, want true", t2)
		}
	}
	for _, t2 := range []ItemTypeMajor{ItemTypeWeapon, ItemTypeVoid, ItemTypeChest} {
		if isItemSwapType(t2) {
			t.Errorf("isItemSwapType(%v) = true, want false", t2)
		}
	}
}
