// Package catalog lists the documents offered by the portal.
package catalog

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Item is a downloadable document. Items are read-only.
type Item struct {
	ID          string `yaml:"id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	SourceURL   string `yaml:"source_url"`
	SizeLabel   string `yaml:"size"`
	DateLabel   string `yaml:"date"`
}

// ErrUnknownItem is returned by Find for ids not in the catalog.
var ErrUnknownItem = errors.New("catalog: unknown item")

// Catalog is an ordered, immutable list of items with unique ids.
type Catalog struct {
	items []Item
	byID  map[string]int
}

// New builds a catalog, rejecting empty catalogs, blank ids and duplicates.
func New(items []Item) (*Catalog, error) {
	if len(items) == 0 {
		return nil, errors.New("catalog: no items")
	}
	c := &Catalog{
		items: append([]Item{}, items...),
		byID:  make(map[string]int, len(items)),
	}
	for i, it := range items {
		if it.ID == "" {
			return nil, fmt.Errorf("catalog: item %d has no id", i)
		}
		if it.SourceURL == "" {
			return nil, fmt.Errorf("catalog: item %s has no source url", it.ID)
		}
		if _, dup := c.byID[it.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate item id %s", it.ID)
		}
		c.byID[it.ID] = i
	}
	return c, nil
}

// Items returns the items in display order.
func (c *Catalog) Items() []Item {
	return append([]Item{}, c.items...)
}

// Find returns the item with the given id.
func (c *Catalog) Find(id string) (Item, error) {
	i, ok := c.byID[id]
	if !ok {
		return Item{}, fmt.Errorf("%w: %s", ErrUnknownItem, id)
	}
	return c.items[i], nil
}

// Primary returns the first item; the direct download is pinned to it.
func (c *Catalog) Primary() Item {
	return c.items[0]
}

type catalogFile struct {
	Items []Item `yaml:"items"`
}

// LoadFromFile reads a catalog from a YAML file with a top-level items list.
func LoadFromFile(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}
	var cf catalogFile
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, fmt.Errorf("parse catalog file: %w", err)
	}
	return New(cf.Items)
}

// Default returns the built-in portal catalog.
func Default() *Catalog {
	c, err := New(defaultItems)
	if err != nil {
		panic(err)
	}
	return c
}

var defaultItems = []Item{
	{
		ID:          "UID-8921",
		Name:        "आधार लिंकिंग फॉर्म 6A (अनिवार्य)",
		Description: "सेवाओं के तत्काल निलंबन को रोकने के लिए बायोमेट्रिक डेटा को लिंक करने के लिए आवेदन।",
		SourceURL:   "https://picsum.photos/800/600?random=1",
		SizeLabel:   "1.2 MB",
		DateLabel:   "12 Oct 2023",
	},
	{
		ID:          "PAN-1022",
		Name:        "आयकर अनुपालन सूचना",
		Description: "दस्तावेजों को लिंक न करने पर दंड के संबंध में आधिकारिक राजपत्र अधिसूचना।",
		SourceURL:   "https://picsum.photos/800/600?random=2",
		SizeLabel:   "890 KB",
		DateLabel:   "05 Nov 2023",
	},
	{
		ID:          "REG-3321",
		Name:        "नागरिक रजिस्ट्री सुधार फॉर्म",
		Description: "आवासीय पता निर्देशांक अपडेट करने के लिए मानक संचालन प्रक्रिया।",
		SourceURL:   "https://picsum.photos/800/600?random=3",
		SizeLabel:   "2.1 MB",
		DateLabel:   "कल",
	},
	{
		ID:          "CIR-4412",
		Name:        "डिजिटल लॉकर प्राधिकरण",
		Description: "डिजिटल संपत्ति पुनर्प्राप्ति के लिए प्रमाणीकरण प्रमाण पत्र।",
		SourceURL:   "https://picsum.photos/800/600?random=4",
		SizeLabel:   "5.5 MB",
		DateLabel:   "2 सप्ताह पहले",
	},
	{
		ID:          "LEG-5591",
		Name:        "साइबर सुरक्षा दिशानिर्देश 2025",
		Description: "डिजिटल पोर्टल्स का उपयोग करने वाले सभी नागरिकों के लिए अनिवार्य सुरक्षा प्रोटोकॉल।",
		SourceURL:   "https://picsum.photos/800/600?random=5",
		SizeLabel:   "1.2 MB",
		DateLabel:   "1 महीने पहले",
	},
	{
		ID:          "NOT-6602",
		Name:        "दंड अनुसूची - अनुलग्नक बी",
		Description: "पहचान सत्यापन में देरी के लिए लागू जुर्माने की सूची।",
		SourceURL:   "https://picsum.photos/800/600?random=6",
		SizeLabel:   "3.3 MB",
		DateLabel:   "2 दिन पहले",
	},
}
