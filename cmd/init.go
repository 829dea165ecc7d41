package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var initStructs bool

const fixturesTemplate = `# Model definitions read by fixturegen
models:
  - name: User
    table: users
    fields:
      - name: id
        type: big_integer
        primary: true
        auto: true
      - name: email
        type: email
        unique: true
        max_length: 254
      - name: username
        type: slug
        unique: true
        min_length: 3
        max_length: 30
      - name: age
        type: small_integer
        min_value: 18
        max_value: 99
      - name: role
        type: char
        default: member
        choices:
          - value: admin
            label: Administrator
          - value: member
            label: Member
      - name: joined_at
        type: datetime
        min_value: "2020-01-01"

  - name: Post
    table: posts
    fields:
      - name: id
        type: big_integer
        primary: true
        auto: true
      - name: title
        type: char
        min_length: 10
        max_length: 120
      - name: body
        type: text
      - name: status
        type: char
        choices: [draft, published, archived]
      - name: rating
        type: decimal
        min_value: 0
        max_value: 5
`

const configTemplate = `# Generation config read by fixturegen
# Probability that a field with a default receives it (0 to 1)
default_value_factor: 1
# Retries allowed when a unique field collides with a stored value
tolerance: 10
# Fixed seed for reproducible output; 0 picks one from the clock
seed: 0

# Per-type overrides merge into the built-in strategies
types:
  text:
    max: 500
  name:
    post: [title]
`

const structsTemplate = `package models

import "time"

// User is read by fixturegen through its fixture tags.
type User struct {
	ID       int64     ` + "`fixture:\"primary;auto\"`" + `
	Email    string    ` + "`fixture:\"type:email;unique;max_length:254\"`" + `
	Username string    ` + "`fixture:\"type:slug;unique;min_length:3;max_length:30\"`" + `
	Age      int16     ` + "`fixture:\"min_value:18;max_value:99\"`" + `
	Role     string    ` + "`fixture:\"type:char;default:member;choices:admin=Administrator|member=Member\"`" + `
	JoinedAt time.Time ` + "`fixture:\"min_value:2020-01-01\"`" + `
}

// Post is a blog post.
type Post struct {
	ID     int64   ` + "`fixture:\"primary;auto\"`" + `
	Title  string  ` + "`fixture:\"type:char;min_length:10;max_length:120\"`" + `
	Body   string  ` + "`fixture:\"type:text\"`" + `
	Status string  ` + "`fixture:\"type:char;choices:draft|published|archived\"`" + `
	Rating float64 ` + "`fixture:\"type:decimal;min_value:0;max_value:5\"`" + `
}
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create example model and config files",
	Long: `Create an example fixtures.yaml and a fixturegen.yaml generation config.

With --structs the models are written as tagged Go structs in models/
instead of YAML.

Examples:
  fixturegen init                    # fixtures.yaml + fixturegen.yaml
  fixturegen init --structs          # models/models.go + fixturegen.yaml
`,
	Run: func(cmd *cobra.Command, args []string) {
		if initStructs {
			if err := writeScaffold(filepath.Join("models", "models.go"), structsTemplate); err != nil {
				fmt.Println("❌", err)
				return
			}
			fmt.Println("📝 Edit the structs in models/models.go, then run 'fixturegen generate -m models'")
		} else {
			if err := writeScaffold("fixtures.yaml", fixturesTemplate); err != nil {
				fmt.Println("❌", err)
				return
			}
			fmt.Println("📝 Edit fixtures.yaml to describe your models")
		}

		if err := writeScaffold("fixturegen.yaml", configTemplate); err != nil {
			fmt.Println("❌", err)
			return
		}
		fmt.Println("🚀 Run 'fixturegen generate' to build your first records")
	},
}

func init() {
	initCmd.Flags().BoolVar(&initStructs, "structs", false, "Write models as tagged Go structs instead of YAML")
}

func writeScaffold(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return fmt.Errorf("error creating %s: %w", path, err)
	}
	fmt.Println("✅ Created", path)
	return nil
}
