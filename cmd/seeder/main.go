package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"time"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Global flags
	apiURL := "http://localhost:8080"
	if envURL := os.Getenv("API_URL"); envURL != "" {
		apiURL = envURL
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "demo":
		err = demoCmd(NewAPIClient(apiURL), args)
	case "import":
		err = importCmd(NewAPIClient(apiURL), args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Seeder - Development tool for populating a bookshelf server

USAGE:
  seeder <command> [options]

COMMANDS:
  demo      Register two users, give one a book and check the other cannot see it
  import    Log in (registering if needed) and create books from a JSON file
  help      Show this help message

ENVIRONMENT:
  API_URL   Backend API URL (default: http://localhost:8080)

EXAMPLES:
  # Smoke-test ownership isolation against a running server
  seeder demo

  # Load a reading list into an account
  seeder import --email=alice@x.com --password=pw1 --file=books.json`)
}

func demoCmd(client *APIClient, args []string) error {
	fs := flag.NewFlagSet("demo", flag.ExitOnError)
	password := fs.String("password", "demo-password", "Password for the generated users")
	fs.Parse(args)

	suffix := time.Now().UnixNano() % 100000
	aliceEmail := fmt.Sprintf("alice_%d@example.com", suffix)
	bobEmail := fmt.Sprintf("bob_%d@example.com", suffix)

	fmt.Printf("Registering %s and %s...\n", aliceEmail, bobEmail)
	aliceToken, err := registerAndLogin(client, "Alice", aliceEmail, *password)
	if err != nil {
		return err
	}
	bobToken, err := registerAndLogin(client, "Bob", bobEmail, *password)
	if err != nil {
		return err
	}

	dune, err := client.CreateBook(aliceToken, Book{Title: "Dune", Author: "Frank Herbert"})
	if err != nil {
		return err
	}
	fmt.Printf("  ✓ Alice created %q (%s)\n", dune.Title, dune.ID)

	aliceBooks, err := client.ListBooks(aliceToken)
	if err != nil {
		return err
	}
	if len(aliceBooks) != 1 {
		return fmt.Errorf("alice should see 1 book, saw %d", len(aliceBooks))
	}
	fmt.Println("  ✓ Alice sees her book")

	bobBooks, err := client.ListBooks(bobToken)
	if err != nil {
		return err
	}
	if len(bobBooks) != 0 {
		return fmt.Errorf("bob should see 0 books, saw %d", len(bobBooks))
	}
	fmt.Println("  ✓ Bob's list is empty")

	_, err = client.GetBook(bobToken, dune.ID)
	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Status != http.StatusNotFound {
		return fmt.Errorf("bob fetching alice's book should be 404, got %v", err)
	}
	fmt.Println("  ✓ Bob gets 404 for Alice's book")

	fmt.Println()
	fmt.Println("Ownership isolation verified.")
	return nil
}

func importCmd(client *APIClient, args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	name := fs.String("name", "", "Display name used if the account must be registered (default: email)")
	email := fs.String("email", "", "Account email (required)")
	password := fs.String("password", "", "Account password (required)")
	file := fs.String("file", "", "JSON file containing an array of books (required)")
	fs.Parse(args)

	if *email == "" || *password == "" || *file == "" {
		fmt.Println("\nUsage: seeder import --email=alice@x.com --password=pw1 --file=books.json")
		return errors.New("--email, --password and --file are required")
	}

	books, err := readBooks(*file)
	if err != nil {
		return err
	}

	token, err := loginOrRegister(client, *name, *email, *password)
	if err != nil {
		return err
	}

	fmt.Printf("Importing %d books for %s...\n", len(books), *email)
	for _, b := range books {
		created, err := client.CreateBook(token, b)
		if err != nil {
			fmt.Printf("  ✗ %q: %v\n", b.Title, err)
			continue
		}
		fmt.Printf("  ✓ %q (%s)\n", created.Title, created.ID)
	}

	stats, err := client.GetStats(token)
	if err != nil {
		return err
	}
	fmt.Printf("\nCatalog now has %d books (%d added this week).\n", stats.TotalBooks, stats.RecentlyAdded)
	return nil
}

func readBooks(path string) ([]Book, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var books []Book
	if err := json.Unmarshal(data, &books); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return books, nil
}

func registerAndLogin(client *APIClient, name, email, password string) (string, error) {
	if _, err := client.Register(name, email, password); err != nil {
		return "", err
	}
	auth, err := client.Login(email, password)
	if err != nil {
		return "", err
	}
	return auth.AccessToken, nil
}

// loginOrRegister logs in, registering the account first if the credentials
// are rejected.
func loginOrRegister(client *APIClient, name, email, password string) (string, error) {
	auth, err := client.Login(email, password)
	if err == nil {
		return auth.AccessToken, nil
	}

	var statusErr *StatusError
	if !errors.As(err, &statusErr) || statusErr.Status != http.StatusUnauthorized {
		return "", err
	}

	if name == "" {
		name = email
	}
	return registerAndLogin(client, name, email, password)
}
