package galleryclient_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"

	"github.com/sagarc03/galleria/galleryclient"
)

func ExampleGallery() {
	// A stand-in for a galleria server that signs every request.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		folder := "optimized"
		if q.Get("original") == "true" {
			folder = "original"
		}
		_, _ = fmt.Fprintf(w, `{"signedUrl":"https://cdn.example.com/%s/%s/%s?sig=x"}`, q.Get("directory"), folder, q.Get("filename"))
	}))
	defer srv.Close()

	client, err := galleryclient.New(&galleryclient.Config{Endpoint: srv.URL})
	if err != nil {
		fmt.Println(err)
		return
	}

	gallery, err := galleryclient.NewGallery(client, "trip", []string{"beach.jpg", "sunset.jpg"})
	if err != nil {
		fmt.Println(err)
		return
	}

	ctx := context.Background()
	n, _ := gallery.LoadThumbnails(ctx)
	gallery.Prev(ctx)
	gallery.Wait()

	snap := gallery.Snapshot()
	fmt.Println("thumbnails:", n)
	fmt.Println("selected:", snap.FullFilename)
	fmt.Println(snap.FullURL)
	// Output:
	// thumbnails: 2
	// selected: sunset.jpg
	// https://cdn.example.com/trip/original/sunset.jpg?sig=x
}
