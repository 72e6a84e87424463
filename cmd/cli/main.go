package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"os"

	"github.com/ZilDuck/zilliqa-marketplace/internal/config"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var client *retryablehttp.Client

func main() {
	config.Init("cli")

	client = retryablehttp.NewClient()
	client.RetryMax = 3
	client.Logger = nil

	app := &cli.App{
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "api", Value: "http://localhost:8080", Usage: "Base url of the marketplace API"},
		},
		Commands: []*cli.Command{
			{
				Name:   "fees",
				Usage:  "Show the current platform fee rates",
				Action: showFees,
			},
			{
				Name:   "setFees",
				Usage:  "Update the platform fee rates",
				Action: setFees,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "admin", Required: true, Usage: "Marketplace owner address"},
					&cli.UintFlag{Name: "sell", Usage: "Sell fee in basis points"},
					&cli.UintFlag{Name: "buy", Usage: "Buy fee in basis points"},
				},
			},
			{
				Name:   "ban",
				Usage:  "Add an actor to the blacklist",
				Action: ban,
				Flags:  adminFlags(),
			},
			{
				Name:   "unban",
				Usage:  "Remove an actor from the blacklist",
				Action: unban,
				Flags:  adminFlags(),
			},
			{
				Name:   "balance",
				Usage:  "Show the escrow balance of an address",
				Action: showBalance,
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "currency", Value: "", Usage: "Token contract address (native when empty)"},
				},
			},
			{
				Name:   "withdraw",
				Usage:  "Withdraw escrowed proceeds for an address",
				Action: withdraw,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{Name: "currency", Usage: "Token contract address (repeatable, native when empty)"},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		zap.L().With(zap.Error(err)).Fatal("Failed to start CLI")
	}
}

func adminFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "admin", Required: true, Usage: "Marketplace owner address"},
	}
}

func showFees(c *cli.Context) error {
	return request(c, "GET", "/fees", nil)
}

func setFees(c *cli.Context) error {
	return request(c, "PUT", "/fees", map[string]interface{}{
		"admin":      c.String("admin"),
		"sellFeeBps": c.Uint("sell"),
		"buyFeeBps":  c.Uint("buy"),
	})
}

func ban(c *cli.Context) error {
	actor := c.Args().First()
	if actor == "" {
		return fmt.Errorf("no actor address provided")
	}

	return request(c, "PUT", "/blacklist/"+actor, map[string]interface{}{
		"admin": c.String("admin"),
	})
}

func unban(c *cli.Context) error {
	actor := c.Args().First()
	if actor == "" {
		return fmt.Errorf("no actor address provided")
	}

	return request(c, "DELETE", "/blacklist/"+actor, map[string]interface{}{
		"admin": c.String("admin"),
	})
}

func showBalance(c *cli.Context) error {
	address := c.Args().First()
	if address == "" {
		return fmt.Errorf("no address provided")
	}

	path := "/balances/" + address
	if currency := c.String("currency"); currency != "" {
		path += "?currency=" + currency
	}

	return request(c, "GET", path, nil)
}

func withdraw(c *cli.Context) error {
	address := c.Args().First()
	if address == "" {
		return fmt.Errorf("no address provided")
	}

	return request(c, "POST", "/withdrawals", map[string]interface{}{
		"beneficiary": address,
		"currencies":  c.StringSlice("currency"),
	})
}

func request(c *cli.Context, method, path string, body interface{}) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return err
		}
	}

	req, err := retryablehttp.NewRequest(method, c.String("api")+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	responseBody, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("%s: %s", resp.Status, string(responseBody))
	}

	if len(responseBody) != 0 {
		fmt.Println(string(responseBody))
	} else {
		fmt.Println(resp.Status)
	}

	return nil
}
