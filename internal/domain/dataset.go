package domain

// Dataset describes one resource category served by the proxy.
type Dataset struct {
	Name     string // key used for upstream URLs and metrics
	File     string // fixture file name, also the redis/mysql key suffix
	Envelope string // object key holding the records array; "" when the fixture is a bare array
}

var (
	Devices         = Dataset{Name: "devices", File: "devices.json"}
	FeaturedReviews = Dataset{Name: "featuredReviews", File: "featuredReviews.json", Envelope: "featuredReviews"}
	ImageReviews    = Dataset{Name: "imageReviews", File: "imageReviews.json"}
	ReviewList      = Dataset{Name: "reviewList", File: "reviewList.json"}
	ProductReviews  = Dataset{Name: "productReviews", File: "productReviews.json"}
)

// Datasets lists every dataset the proxy knows about, in seeding order.
var Datasets = []Dataset{Devices, FeaturedReviews, ImageReviews, ReviewList, ProductReviews}

// DatasetByName returns the dataset registered under name.
func DatasetByName(name string) (Dataset, bool) {
	for _, ds := range Datasets {
		if ds.Name == name {
			return ds, true
		}
	}
	return Dataset{}, false
}
