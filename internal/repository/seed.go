package repository

import "github.com/chiragjain10/avrcraft-sub000/internal/entity"

// SeedProducts is the starter catalog loaded into an empty product table.
var SeedProducts = []entity.Product{
	{ID: "prod-001", Name: "Madhubani Peacock Painting", Description: "Hand-painted Madhubani art on handmade paper with natural pigments.", Price: 2450, ImageURL: "https://res.cloudinary.com/avrcraft/image/upload/madhubani-peacock.jpg", Category: "Paintings", Stock: 4, Author: "Sita Devi", Material: "Handmade paper", Dimensions: "40x30 cm"},
	{ID: "prod-002", Name: "Terracotta Bell Vase", Description: "Wheel-thrown terracotta vase with a matte finish.", Price: 899, ImageURL: "https://res.cloudinary.com/avrcraft/image/upload/terracotta-vase.jpg", Category: "Pottery", Stock: 25, Material: "Terracotta", Dimensions: "25 cm"},
	{ID: "prod-003", Name: "Brass Diya Set", Description: "Set of four hand-cast brass diyas.", Price: 1299, ImageURL: "https://res.cloudinary.com/avrcraft/image/upload/brass-diya.jpg", Category: "Decor", Stock: 40, Material: "Brass"},
	{ID: "prod-004", Name: "Warli Village Canvas", Description: "Original Warli painting on primed canvas.", Price: 5600, ImageURL: "https://res.cloudinary.com/avrcraft/image/upload/warli-canvas.jpg", Category: "Paintings", Stock: 1, Author: "Jivya Mashe", Material: "Canvas", Dimensions: "60x45 cm"},
	{ID: "prod-005", Name: "Block Print Table Runner", Description: "Hand block printed cotton runner from Bagru.", Price: 749, ImageURL: "https://res.cloudinary.com/avrcraft/image/upload/table-runner.jpg", Category: "Textiles", Stock: 60, Material: "Cotton", Dimensions: "180x35 cm"},
	{ID: "prod-006", Name: "Tales of the Craftsmen", Description: "Illustrated hardcover on India's living craft traditions.", Price: 650, ImageURL: "https://res.cloudinary.com/avrcraft/image/upload/craft-book.jpg", Category: "Books", Stock: 15, Author: "Meera Iyer"},
}
