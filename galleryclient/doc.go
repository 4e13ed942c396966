// Package galleryclient is the client side of galleria: an HTTP client for
// the signed-url API and the Gallery state machine that drives a viewer.
//
// # Basic Usage
//
//	client, err := galleryclient.New(&galleryclient.Config{
//		Endpoint: "http://localhost:5708",
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	manifest, err := client.Images(ctx)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	gallery, err := galleryclient.NewGallery(client, manifest.Directory, manifest.Images)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Thumbnails load one at a time and stop at the first failure.
//	if _, err := gallery.LoadThumbnails(ctx); err != nil {
//		log.Print(err)
//	}
//
//	_ = gallery.Select(ctx, 0)
//	gallery.Next(ctx) // wraps around at the end
//	gallery.Wait()
//
//	snap := gallery.Snapshot()
//
// # Profile Configuration
//
// Profiles in ~/.galleria/config.yaml name servers and may pin the
// directory and image list instead of asking the server for them:
//
//	configFile, err := galleryclient.LoadConfigFile(galleryclient.DefaultConfigPath())
//	profile, err := configFile.GetProfile("holiday")
//	cfg := galleryclient.ConfigFromProfile(profile)
//
// # Output Formatting
//
//	formatter := galleryclient.NewFormatter(jsonOutput, quiet)
//	formatter.FormatGallery(os.Stdout, gallery.Snapshot())
package galleryclient
