package domain

import "testing"

func TestValidImageRef(t *testing.T) {
	valid := []string{"a.jpg", "photo.JPEG", "x.png", "anim.GIF", ".jpg"}
	for _, ref := range valid {
		if !ValidImageRef(ref) {
			t.Errorf("expected %q to be valid", ref)
		}
	}

	invalid := []string{"", "a.bmp", "a.jpg.exe", "jpg", "a.svg"}
	for _, ref := range invalid {
		if ValidImageRef(ref) {
			t.Errorf("expected %q to be rejected", ref)
		}
	}
}

func TestProductHasStock(t *testing.T) {
	p := Product{Stock: 5}
	if !p.HasStock(5) {
		t.Error("expected exact stock to be enough")
	}
	if p.HasStock(6) {
		t.Error("expected 6 to exceed stock of 5")
	}
	if !(Product{Stock: 0}).HasStock(0) {
		t.Error("expected zero request against zero stock to pass")
	}
}
